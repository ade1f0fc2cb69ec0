// Package analytics records how shoppers interact with color and size
// pickers and reports on it for administrators.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/validation"
)

const (
	topColorsLimit   = 10
	defaultTopLimit  = 50
	unknownProduct   = "Unknown Product"
	unknownVisitorIP = "unknown"
	unknownVisitorUA = "Unknown"
)

type Service struct {
	events   store.AnalyticsStore
	products store.ProductStore
	now      func() time.Time
}

func NewService(events store.AnalyticsStore, products store.ProductStore) *Service {
	return &Service{events: events, products: products, now: time.Now}
}

// TrackColor records a color interaction under the product's current name.
func (s *Service) TrackColor(ctx context.Context, in ColorInput, v model.Visitor) (*model.ColorEvent, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	e := &model.ColorEvent{
		ProductID:   in.ProductID,
		ProductName: s.productName(ctx, in.ProductID),
		ColorName:   in.ColorName,
		ColorHex:    in.ColorHex,
		Action:      in.Action,
		SessionID:   in.SessionID,
		Visitor:     visitor(v),
		Timestamp:   s.now().UTC(),
	}
	if err := s.events.RecordColor(ctx, e); err != nil {
		return nil, fmt.Errorf("record color interaction: %w", err)
	}
	return e, nil
}

func (s *Service) TrackSize(ctx context.Context, in SizeInput, v model.Visitor) (*model.SizeEvent, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	e := &model.SizeEvent{
		ProductID: in.ProductID,
		SizeName:  in.SizeName,
		Action:    in.Action,
		SessionID: in.SessionID,
		Visitor:   visitor(v),
		Timestamp: s.now().UTC(),
	}
	if err := s.events.RecordSize(ctx, e); err != nil {
		return nil, fmt.Errorf("record size interaction: %w", err)
	}
	return e, nil
}

func (s *Service) TrackCombination(ctx context.Context, in CombinationInput, v model.Visitor) (*model.CombinationEvent, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	e := &model.CombinationEvent{
		ProductID: in.ProductID,
		ColorName: in.ColorName,
		ColorHex:  in.ColorHex,
		SizeName:  in.SizeName,
		Action:    in.Action,
		SessionID: in.SessionID,
		Visitor:   visitor(v),
		Timestamp: s.now().UTC(),
	}
	if err := s.events.RecordCombination(ctx, e); err != nil {
		return nil, fmt.Errorf("record combination interaction: %w", err)
	}
	return e, nil
}

// ColorReport groups color interactions per product and color, busiest
// first, with the ten most interacted-with colors overall.
func (s *Service) ColorReport(ctx context.Context, q Query) (*ColorReport, error) {
	w, label, err := q.window(s.now())
	if err != nil {
		return nil, err
	}

	report := &ColorReport{TimeRange: label}
	var counts []model.ColorActionCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.events.ColorActions(gctx, w)
		return err
	})
	g.Go(func() error {
		var err error
		report.TopColors, err = s.events.TopColors(gctx, w, topColorsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		report.TotalRecords, err = s.events.CountColor(gctx, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("color report: %w", err)
	}

	report.ColorStats = colorStats(counts, q.ProductID != "")
	if report.TopColors == nil {
		report.TopColors = []model.ColorTotal{}
	}
	return report, nil
}

// SizeReport ranks sizes by interactions and by add-to-cart conversion.
func (s *Service) SizeReport(ctx context.Context, q Query) (*SizeReport, error) {
	w, label, err := q.window(s.now())
	if err != nil {
		return nil, err
	}

	var counts []model.SizeActionCount
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.events.SizeActions(gctx, w)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.events.CountSize(gctx, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("size report: %w", err)
	}

	stats := sizeStats(counts)
	byConversion := append([]SizeStat(nil), stats...)
	sort.SliceStable(byConversion, func(i, j int) bool {
		return byConversion[i].ConversionRate > byConversion[j].ConversionRate
	})

	return &SizeReport{
		TopSizes:        limit(stats, q.Limit),
		ConversionStats: byConversion,
		TimeRange:       label,
		TotalRecords:    total,
	}, nil
}

// CombinationReport ranks color and size pairs and lists each product's
// chosen pairs.
func (s *Service) CombinationReport(ctx context.Context, q Query) (*CombinationReport, error) {
	w, label, err := q.window(s.now())
	if err != nil {
		return nil, err
	}

	var counts []model.CombinationActionCount
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.events.CombinationActions(gctx, w)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.events.CountCombination(gctx, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("combination report: %w", err)
	}

	return &CombinationReport{
		TopCombinations:     limit(combinationStats(counts), q.Limit),
		ProductCombinations: productCombinations(counts),
		TimeRange:           label,
		TotalRecords:        total,
	}, nil
}

func (s *Service) productName(ctx context.Context, id string) string {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[Analytics] Product lookup for %s failed: %v", id, err)
		}
		return unknownProduct
	}
	if p.Name == "" {
		return unknownProduct
	}
	return p.Name
}

func visitor(v model.Visitor) model.Visitor {
	if v.IP == "" {
		v.IP = unknownVisitorIP
	}
	if v.UserAgent == "" {
		v.UserAgent = unknownVisitorUA
	}
	return v
}

func limit[T any](items []T, n int) []T {
	if n <= 0 {
		n = defaultTopLimit
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// colorStats folds per-action counts into one entry per product and
// color. With perProduct set the product columns are left out.
func colorStats(counts []model.ColorActionCount, perProduct bool) []ColorStat {
	type key struct{ product, name, color, hex string }
	index := make(map[key]int)
	stats := make([]ColorStat, 0)
	for _, c := range counts {
		k := key{c.ProductID, c.ProductName, c.ColorName, c.ColorHex}
		if perProduct {
			k.product, k.name = "", ""
		}
		i, ok := index[k]
		if !ok {
			i = len(stats)
			index[k] = i
			stats = append(stats, ColorStat{
				ProductID:   k.product,
				ProductName: k.name,
				ColorName:   c.ColorName,
				ColorHex:    c.ColorHex,
				Actions:     []ActionStat{},
			})
		}
		stats[i].Actions = append(stats[i].Actions, ActionStat{
			Action:         c.Action,
			Count:          c.Count,
			UniqueUsers:    c.UniqueUsers,
			UniqueSessions: c.UniqueSessions,
		})
		stats[i].TotalInteractions += c.Count
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalInteractions > stats[j].TotalInteractions
	})
	return stats
}

func sizeStats(counts []model.SizeActionCount) []SizeStat {
	index := make(map[string]int)
	stats := make([]SizeStat, 0)
	for _, c := range counts {
		i, ok := index[c.SizeName]
		if !ok {
			i = len(stats)
			index[c.SizeName] = i
			stats = append(stats, SizeStat{SizeName: c.SizeName})
		}
		st := &stats[i]
		st.TotalInteractions += c.Count
		switch c.Action {
		case model.ActionView:
			st.Views += c.Count
		case model.ActionSelect:
			st.Selections += c.Count
		case model.ActionAddToCart:
			st.AddToCarts += c.Count
		case model.ActionPurchase:
			st.Purchases += c.Count
		}
	}
	for i := range stats {
		stats[i].SelectionRate = rate(stats[i].Selections, stats[i].Views)
		stats[i].ConversionRate = rate(stats[i].AddToCarts, stats[i].Selections)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalInteractions > stats[j].TotalInteractions
	})
	return stats
}

func combinationStats(counts []model.CombinationActionCount) []CombinationStat {
	type key struct{ color, hex, size string }
	index := make(map[key]int)
	stats := make([]CombinationStat, 0)
	for _, c := range counts {
		k := key{c.ColorName, c.ColorHex, c.SizeName}
		i, ok := index[k]
		if !ok {
			i = len(stats)
			index[k] = i
			stats = append(stats, CombinationStat{ColorName: c.ColorName, ColorHex: c.ColorHex, SizeName: c.SizeName})
		}
		st := &stats[i]
		st.TotalInteractions += c.Count
		switch c.Action {
		case model.ActionCombination:
			st.Combinations += c.Count
		case model.ActionAddToCartCombination:
			st.AddToCarts += c.Count
		case model.ActionPurchaseCombination:
			st.Purchases += c.Count
		}
	}
	for i := range stats {
		stats[i].ConversionRate = rate(stats[i].AddToCarts, stats[i].Combinations)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalInteractions > stats[j].TotalInteractions
	})
	return stats
}

func productCombinations(counts []model.CombinationActionCount) []ProductCombinations {
	type pair struct{ color, size string }
	index := make(map[string]int)
	pairIndex := make(map[string]map[pair]int)
	out := make([]ProductCombinations, 0)
	for _, c := range counts {
		i, ok := index[c.ProductID]
		if !ok {
			i = len(out)
			index[c.ProductID] = i
			pairIndex[c.ProductID] = make(map[pair]int)
			out = append(out, ProductCombinations{ProductID: c.ProductID, Combinations: []ComboCount{}})
		}
		pc := &out[i]
		p := pair{c.ColorName, c.SizeName}
		j, ok := pairIndex[c.ProductID][p]
		if !ok {
			j = len(pc.Combinations)
			pairIndex[c.ProductID][p] = j
			pc.Combinations = append(pc.Combinations, ComboCount{Color: c.ColorName, Size: c.SizeName})
		}
		pc.Combinations[j].Count += c.Count
		pc.TotalCombinations += c.Count
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCombinations > out[j].TotalCombinations
	})
	return out
}
