package reporting

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/example/ec-storefront/internal/model"
)

var colorHex = map[string]string{
	"red":    "#FF0000",
	"blue":   "#0000FF",
	"green":  "#00FF00",
	"black":  "#000000",
	"white":  "#FFFFFF",
	"yellow": "#FFFF00",
	"purple": "#800080",
	"pink":   "#FFC0CB",
	"orange": "#FFA500",
	"brown":  "#A52A2A",
	"gray":   "#808080",
	"grey":   "#808080",
}

const defaultHex = "#000000"

// ProductFilters builds the storefront facet lists from five independent
// aggregation passes.
func (a *Aggregator) ProductFilters(ctx context.Context) (*model.ProductFilters, error) {
	var (
		categories []model.CategoryFacet
		colors     []model.FacetCount
		sizes      []model.FacetCount
		brands     []model.FacetCount
		buckets    model.PriceBucketCounts
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		categories, err = a.reports.CategoryFacets(gctx)
		return err
	})
	g.Go(func() (err error) {
		colors, err = a.reports.ColorFacets(gctx)
		return err
	})
	g.Go(func() (err error) {
		sizes, err = a.reports.SizeFacets(gctx)
		return err
	})
	g.Go(func() (err error) {
		brands, err = a.reports.BrandFacets(gctx)
		return err
	})
	g.Go(func() (err error) {
		buckets, err = a.reports.PriceBuckets(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("product filters: %w", err)
	}

	if categories == nil {
		categories = []model.CategoryFacet{}
	}
	return &model.ProductFilters{
		Categories:  categories,
		Colors:      colorOptions(colors),
		Sizes:       options(sizes, strings.ToUpper),
		Brands:      options(brands, func(s string) string { return s }),
		PriceRanges: priceRanges(buckets),
	}, nil
}

func colorOptions(facets []model.FacetCount) []model.FilterOption {
	out := make([]model.FilterOption, 0, len(facets))
	for _, f := range facets {
		hex, ok := colorHex[strings.ToLower(f.Value)]
		if !ok {
			hex = defaultHex
		}
		out = append(out, model.FilterOption{
			Value: f.Value,
			Label: capitalize(f.Value),
			Hex:   hex,
			Count: f.Count,
		})
	}
	return out
}

func options(facets []model.FacetCount, label func(string) string) []model.FilterOption {
	out := make([]model.FilterOption, 0, len(facets))
	for _, f := range facets {
		if f.Value == "" {
			continue
		}
		out = append(out, model.FilterOption{Value: f.Value, Label: label(f.Value), Count: f.Count})
	}
	return out
}

func priceRanges(b model.PriceBucketCounts) []model.PriceRange {
	return []model.PriceRange{
		{Value: "0-50", Label: "Under $50", Min: 0, Max: 50, Count: b.Under50},
		{Value: "50-100", Label: "$50 - $100", Min: 50, Max: 100, Count: b.From50To100},
		{Value: "100-200", Label: "$100 - $200", Min: 100, Max: 200, Count: b.From100To200},
		{Value: "200+", Label: "Above $200", Min: 200, Max: 999999, Count: b.Over200},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
