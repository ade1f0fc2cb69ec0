package order

import (
	"context"
	"log"

	"github.com/example/ec-storefront/internal/model"
)

// resolve attaches user and product summaries for display. Lookup
// failures leave the references unresolved.
func (s *Service) resolve(ctx context.Context, o *model.Order) *model.Order {
	return s.resolveAll(ctx, []*model.Order{o})[0]
}

func (s *Service) resolveAll(ctx context.Context, orders []*model.Order) []*model.Order {
	if len(orders) == 0 {
		return orders
	}

	var userIDs, productIDs []string
	seen := make(map[string]bool)
	for _, o := range orders {
		if o.UserID != "" && !seen["u:"+o.UserID] {
			seen["u:"+o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
		for _, id := range o.ProductIDs() {
			if !seen["p:"+id] {
				seen["p:"+id] = true
				productIDs = append(productIDs, id)
			}
		}
	}

	users, err := s.users.GetMany(ctx, userIDs)
	if err != nil {
		log.Printf("[Order] Failed to resolve order users: %v", err)
	}
	products, err := s.products.GetMany(ctx, productIDs)
	if err != nil {
		log.Printf("[Order] Failed to resolve order products: %v", err)
	}

	for _, o := range orders {
		if u, ok := users[o.UserID]; ok {
			o.User = u.Summary()
		}
		for i := range o.Items {
			if p, ok := products[o.Items[i].ProductID]; ok {
				o.Items[i].Product = p.Summary()
			}
		}
	}
	return orders
}
