// Package model holds the persisted entities of the storefront.
package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodStripe         PaymentMethod = "stripe"
)

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// OrderItem is a line item. Price is captured at purchase time.
type OrderItem struct {
	ProductID string          `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	Product   *ProductSummary `json:"productInfo,omitempty"`
}

type Order struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"userId,omitempty"`
	User                  *UserSummary    `json:"user,omitempty"`
	CustomerInfo          CustomerInfo    `json:"customerInfo"`
	Items                 []OrderItem     `json:"items"`
	ShippingAddress       ShippingAddress `json:"shippingAddress"`
	PaymentMethod         PaymentMethod   `json:"paymentMethod"`
	PaymentStatus         PaymentStatus   `json:"paymentStatus"`
	Status                OrderStatus     `json:"status"`
	StripePaymentIntentID string          `json:"stripePaymentIntentId,omitempty"`
	StripeCustomerID      string          `json:"stripeCustomerId,omitempty"`
	TotalAmount           float64         `json:"totalAmount"`
	ShippingCost          float64         `json:"shippingCost"`
	Tax                   float64         `json:"tax"`
	IdempotencyKey        string          `json:"-"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// ContactEmail is the address status emails go to: the attached user's
// email when resolved, otherwise the checkout contact.
func (o *Order) ContactEmail() string {
	if o.User != nil && o.User.Email != "" {
		return o.User.Email
	}
	return o.CustomerInfo.Email
}

// CustomerName is the display name used in notifications.
func (o *Order) CustomerName() string {
	if o.User != nil && o.User.Name != "" {
		return o.User.Name
	}
	if o.CustomerInfo.Name != "" {
		return o.CustomerInfo.Name
	}
	return "Guest"
}

// OwnedBy reports whether the order is attached to userID.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID != "" && o.UserID == userID
}

// ProductIDs returns the distinct product ids referenced by the line items.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]bool, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
