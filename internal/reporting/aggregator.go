// Package reporting computes dashboard statistics, product rating
// aggregates and storefront filter facets on demand.
package reporting

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 5
	unknownProduct    = "Unknown"
)

type Aggregator struct {
	reports  store.ReportStore
	users    store.UserStore
	products store.ProductStore
}

func NewAggregator(reports store.ReportStore, users store.UserStore, products store.ProductStore) *Aggregator {
	return &Aggregator{reports: reports, users: users, products: products}
}

// DashboardStats runs the independent dashboard queries concurrently.
func (a *Aggregator) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := a.reports.TotalSales(gctx)
		stats.TotalSales = total
		return err
	})
	g.Go(func() error {
		n, err := a.reports.CountOrders(gctx)
		stats.TotalOrders = n
		return err
	})
	g.Go(func() error {
		n, err := a.users.Count(gctx, model.RoleCustomer)
		stats.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		orders, err := a.recentOrders(gctx)
		stats.RecentOrders = orders
		return err
	})
	g.Go(func() error {
		top, err := a.topProducts(gctx)
		stats.TopProducts = top
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (a *Aggregator) recentOrders(ctx context.Context) ([]*model.Order, error) {
	orders, err := a.reports.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, o := range orders {
		if o.UserID != "" {
			ids = append(ids, o.UserID)
		}
	}
	users, err := a.users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if u, ok := users[o.UserID]; ok {
			o.User = u.Summary()
		}
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return orders, nil
}

func (a *Aggregator) topProducts(ctx context.Context) ([]model.ProductSales, error) {
	sales, err := a.reports.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(sales))
	for i, s := range sales {
		ids[i] = s.ProductID
	}
	products, err := a.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		if p, ok := products[sales[i].ProductID]; ok {
			sales[i].Name = p.Name
		} else {
			sales[i].Name = unknownProduct
		}
	}
	if sales == nil {
		sales = []model.ProductSales{}
	}
	return sales, nil
}

// RecalculateRatings stores the approved-review aggregate on the product.
// With no approved reviews the product falls back to the default rating.
func (a *Aggregator) RecalculateRatings(ctx context.Context, productID string) error {
	st, err := a.reports.ApprovedRatingStats(ctx, productID)
	if err != nil {
		return fmt.Errorf("rating stats for %s: %w", productID, err)
	}

	average, quantity := model.DefaultRating, 0
	if st.Count > 0 {
		average = decimal.NewFromFloat(st.Average).Round(1).InexactFloat64()
		quantity = st.Count
	}

	if err := a.products.UpdateRatings(ctx, productID, average, quantity); err != nil {
		return fmt.Errorf("update ratings for %s: %w", productID, err)
	}
	log.Printf("[Reporting] Product %s rating now %.1f over %d review(s)", productID, average, quantity)
	return nil
}
