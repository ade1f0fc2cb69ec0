package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/example/ec-storefront/internal/model"
)

type ActionStat struct {
	Action         string `json:"action"`
	Count          int    `json:"count"`
	UniqueUsers    int    `json:"uniqueUsers"`
	UniqueSessions int    `json:"uniqueSessions"`
}

type ColorStat struct {
	ProductID         string       `json:"productId,omitempty"`
	ProductName       string       `json:"productName,omitempty"`
	ColorName         string       `json:"colorName"`
	ColorHex          string       `json:"colorHex"`
	Actions           []ActionStat `json:"actions"`
	TotalInteractions int          `json:"totalInteractions"`
}

type ColorReport struct {
	ColorStats   []ColorStat        `json:"colorStats"`
	TopColors    []model.ColorTotal `json:"topColors"`
	TimeRange    string             `json:"timeRange"`
	TotalRecords int64              `json:"totalRecords"`
}

type SizeStat struct {
	SizeName          string  `json:"sizeName"`
	TotalInteractions int     `json:"totalInteractions"`
	Views             int     `json:"views"`
	Selections        int     `json:"selections"`
	AddToCarts        int     `json:"addToCarts"`
	Purchases         int     `json:"purchases"`
	SelectionRate     float64 `json:"selectionRate"`
	ConversionRate    float64 `json:"conversionRate"`
}

type SizeReport struct {
	TopSizes        []SizeStat `json:"topSizes"`
	ConversionStats []SizeStat `json:"conversionStats"`
	TimeRange       string     `json:"timeRange"`
	TotalRecords    int64      `json:"totalRecords"`
}

type CombinationStat struct {
	ColorName         string  `json:"colorName"`
	ColorHex          string  `json:"colorHex"`
	SizeName          string  `json:"sizeName"`
	TotalInteractions int     `json:"totalInteractions"`
	Combinations      int     `json:"combinations"`
	AddToCarts        int     `json:"addToCarts"`
	Purchases         int     `json:"purchases"`
	ConversionRate    float64 `json:"conversionRate"`
}

type ComboCount struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Count int    `json:"count"`
}

type ProductCombinations struct {
	ProductID         string       `json:"productId"`
	Combinations      []ComboCount `json:"combinations"`
	TotalCombinations int          `json:"totalCombinations"`
}

type CombinationReport struct {
	TopCombinations     []CombinationStat     `json:"topCombinations"`
	ProductCombinations []ProductCombinations `json:"productCombinations"`
	TimeRange           string                `json:"timeRange"`
	TotalRecords        int64                 `json:"totalRecords"`
}

// rate is part/whole as a percentage rounded to two places, or 0 when
// whole is 0.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).
		InexactFloat64()
}
