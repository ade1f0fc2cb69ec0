package category

import "github.com/example/ec-storefront/internal/apperror"

var (
	ErrCategoryNotFound = apperror.New(apperror.KindNotFound, "Category not found")
	ErrCategoryExists   = apperror.New(apperror.KindConflict, "Category with this name or slug already exists")
	ErrInvalidSlug      = apperror.Validation("name", "name must contain at least one letter or number")
	ErrUnknownParent    = apperror.Validation("parent", "parent category does not exist")
	ErrSelfParent       = apperror.Validation("parent", "category cannot be its own parent")
)
