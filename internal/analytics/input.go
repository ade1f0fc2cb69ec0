package analytics

import "strings"

type ColorInput struct {
	ProductID string `json:"productId" validate:"required"`
	ColorName string `json:"colorName" validate:"required"`
	ColorHex  string `json:"colorHex" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=view select add_to_cart purchase"`
	SessionID string `json:"sessionId" validate:"required"`
}

type SizeInput struct {
	ProductID string `json:"productId" validate:"required"`
	SizeName  string `json:"sizeName" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=view select add_to_cart purchase"`
	SessionID string `json:"sessionId" validate:"required"`
}

type CombinationInput struct {
	ProductID string `json:"productId" validate:"required"`
	ColorName string `json:"colorName" validate:"required"`
	ColorHex  string `json:"colorHex" validate:"required"`
	SizeName  string `json:"sizeName" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=color_size_combination add_to_cart_combination purchase_combination"`
	SessionID string `json:"sessionId" validate:"required"`
}

func (in ColorInput) trimmed() ColorInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.ColorName = strings.TrimSpace(in.ColorName)
	in.ColorHex = strings.TrimSpace(in.ColorHex)
	return in
}

func (in SizeInput) trimmed() SizeInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.SizeName = strings.TrimSpace(in.SizeName)
	return in
}

func (in CombinationInput) trimmed() CombinationInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.ColorName = strings.TrimSpace(in.ColorName)
	in.ColorHex = strings.TrimSpace(in.ColorHex)
	in.SizeName = strings.TrimSpace(in.SizeName)
	return in
}
