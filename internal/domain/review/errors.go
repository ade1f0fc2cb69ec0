package review

import "github.com/example/ec-storefront/internal/apperror"

var (
	ErrReviewNotFound  = apperror.New(apperror.KindNotFound, "Review not found")
	ErrProductNotFound = apperror.New(apperror.KindNotFound, "Product not found")
	ErrNotReviewOwner  = apperror.New(apperror.KindForbidden, "Not authorized to modify this review")
	ErrAlreadyReviewed = apperror.New(apperror.KindConflict, "You have already reviewed this product")
	ErrInvalidStatus   = apperror.New(apperror.KindValidation, "Invalid status")
)
