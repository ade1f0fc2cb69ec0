package product

import "github.com/example/ec-storefront/internal/apperror"

var (
	ErrProductNotFound = apperror.New(apperror.KindNotFound, "Product not found")
	ErrUnknownCategory = apperror.Validation("category", "category does not exist")
	ErrQueryRequired   = apperror.Validation("q", "Search query is required")
)
