package model

import "time"

// Interaction actions recorded for color and size pickers.
const (
	ActionView      = "view"
	ActionSelect    = "select"
	ActionAddToCart = "add_to_cart"
	ActionPurchase  = "purchase"
)

// Actions recorded for a color and size chosen together.
const (
	ActionCombination          = "color_size_combination"
	ActionAddToCartCombination = "add_to_cart_combination"
	ActionPurchaseCombination  = "purchase_combination"
)

// Visitor identifies who produced an interaction. UserID is empty for guests.
type Visitor struct {
	UserID    string `json:"userId,omitempty" bson:"userId,omitempty"`
	IP        string `json:"userIP" bson:"userIP"`
	UserAgent string `json:"userAgent" bson:"userAgent"`
}

type ColorEvent struct {
	ProductID   string    `json:"productId" bson:"productId"`
	ProductName string    `json:"productName" bson:"productName"`
	ColorName   string    `json:"colorName" bson:"colorName"`
	ColorHex    string    `json:"colorHex" bson:"colorHex"`
	Action      string    `json:"action" bson:"action"`
	SessionID   string    `json:"sessionId" bson:"sessionId"`
	Visitor     `bson:",inline"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

type SizeEvent struct {
	ProductID string    `json:"productId" bson:"productId"`
	SizeName  string    `json:"sizeName" bson:"sizeName"`
	Action    string    `json:"action" bson:"action"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Visitor   `bson:",inline"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type CombinationEvent struct {
	ProductID string    `json:"productId" bson:"productId"`
	ColorName string    `json:"colorName" bson:"colorName"`
	ColorHex  string    `json:"colorHex" bson:"colorHex"`
	SizeName  string    `json:"sizeName" bson:"sizeName"`
	Action    string    `json:"action" bson:"action"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Visitor   `bson:",inline"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// AnalyticsWindow bounds an analytics query. A zero To leaves the window
// open-ended; an empty ProductID covers every product.
type AnalyticsWindow struct {
	ProductID string
	From      time.Time
	To        time.Time
}

// Contains reports whether t and productID fall inside the window.
func (w AnalyticsWindow) Contains(productID string, t time.Time) bool {
	if w.ProductID != "" && productID != w.ProductID {
		return false
	}
	if t.Before(w.From) {
		return false
	}
	return w.To.IsZero() || !t.After(w.To)
}

// ColorActionCount is the number of interactions of one kind with one
// color of one product.
type ColorActionCount struct {
	ProductID      string `bson:"productId"`
	ProductName    string `bson:"productName"`
	ColorName      string `bson:"colorName"`
	ColorHex       string `bson:"colorHex"`
	Action         string `bson:"action"`
	Count          int    `bson:"count"`
	UniqueUsers    int    `bson:"uniqueUsers"`
	UniqueSessions int    `bson:"uniqueSessions"`
}

// ColorTotal is a color's interactions across all products.
type ColorTotal struct {
	ColorName       string `json:"colorName" bson:"colorName"`
	ColorHex        string `json:"colorHex" bson:"colorHex"`
	TotalSelections int    `json:"totalSelections" bson:"totalSelections"`
	UniqueProducts  int    `json:"uniqueProducts" bson:"uniqueProducts"`
	UniqueUsers     int    `json:"uniqueUsers" bson:"uniqueUsers"`
}

type SizeActionCount struct {
	SizeName string `bson:"sizeName"`
	Action   string `bson:"action"`
	Count    int    `bson:"count"`
}

type CombinationActionCount struct {
	ProductID string `bson:"productId"`
	ColorName string `bson:"colorName"`
	ColorHex  string `bson:"colorHex"`
	SizeName  string `bson:"sizeName"`
	Action    string `bson:"action"`
	Count     int    `bson:"count"`
}
