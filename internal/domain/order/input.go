package order

import "github.com/example/ec-storefront/internal/model"

// CreateInput is the checkout payload. Status fields are not part of it:
// a new order always starts pending.
type CreateInput struct {
	CustomerInfo    CustomerInput `json:"customerInfo"`
	Items           []ItemInput   `json:"items" validate:"required,min=1,dive"`
	ShippingAddress AddressInput  `json:"shippingAddress"`
	PaymentMethod   string        `json:"paymentMethod" validate:"omitempty,oneof=cash_on_delivery stripe"`
	TotalAmount     *float64      `json:"totalAmount" validate:"required,gte=0"`
	ShippingCost    float64       `json:"shippingCost" validate:"gte=0"`
	Tax             float64       `json:"tax" validate:"gte=0"`
	IdempotencyKey  string        `json:"-"`
}

type CustomerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type ItemInput struct {
	ProductID string  `json:"product" validate:"required"`
	Quantity  int     `json:"quantity" validate:"min=1"`
	Price     float64 `json:"price" validate:"gte=0"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
}

type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country"`
}

const defaultCountry = "US"

func (in CreateInput) items() []model.OrderItem {
	items := make([]model.OrderItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = model.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Color:     it.Color,
			Size:      it.Size,
		}
	}
	return items
}

func (in CreateInput) address() model.ShippingAddress {
	country := in.ShippingAddress.Country
	if country == "" {
		country = defaultCountry
	}
	return model.ShippingAddress{
		Street:  in.ShippingAddress.Street,
		City:    in.ShippingAddress.City,
		State:   in.ShippingAddress.State,
		ZipCode: in.ShippingAddress.ZipCode,
		Country: country,
	}
}

func (in CreateInput) paymentMethod() model.PaymentMethod {
	if in.PaymentMethod == "" {
		return model.PaymentMethodCashOnDelivery
	}
	return model.PaymentMethod(in.PaymentMethod)
}
