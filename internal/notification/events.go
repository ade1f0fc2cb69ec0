package notification

import (
	"encoding/json"
	"time"
)

// Envelope is the wire form of an event on the bus.
type Envelope struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type NewOrderPayload struct {
	OrderID     string    `json:"orderId"`
	Customer    string    `json:"customer"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderStatusPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type ReviewPayload struct {
	ProductID string `json:"productId"`
	ReviewID  string `json:"reviewId"`
}

type ReviewHelpfulPayload struct {
	ReviewID string `json:"reviewId"`
	Helpful  int    `json:"helpful"`
}

type SettingPayload struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}
