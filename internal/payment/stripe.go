package payment

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider implements Provider on the Stripe API.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, in IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, in CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(in.Email),
		Name:  stripe.String(in.Name),
	}
	params.Context = ctx
	params.AddMetadata("userId", in.UserID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (p *StripeProvider) ListCards(ctx context.Context, customerID string) ([]Card, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	cards := make([]Card, 0)
	it := p.api.PaymentMethods.List(params)
	for it.Next() {
		cards = append(cards, cardFromStripe(it.PaymentMethod()))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func (p *StripeProvider) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) (*Card, error) {
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.Attach(paymentMethodID, params)
	if err != nil {
		return nil, err
	}
	card := cardFromStripe(pm)
	return &card, nil
}

func (p *StripeProvider) Refund(ctx context.Context, in RefundParams) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(in.PaymentIntentID),
		Reason:        stripe.String(in.Reason),
	}
	if in.Amount > 0 {
		params.Amount = stripe.Int64(in.Amount)
	}
	params.Context = ctx

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, err
	}
	return &Refund{
		ID:       r.ID,
		Amount:   r.Amount,
		Currency: string(r.Currency),
		Status:   string(r.Status),
	}, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

func cardFromStripe(pm *stripe.PaymentMethod) Card {
	c := Card{ID: pm.ID}
	if pm.Card != nil {
		c.Brand = string(pm.Card.Brand)
		c.Last4 = pm.Card.Last4
		c.ExpMonth = pm.Card.ExpMonth
		c.ExpYear = pm.Card.ExpYear
	}
	return c
}
