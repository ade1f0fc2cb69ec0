package order

import "github.com/example/ec-storefront/internal/apperror"

var (
	ErrOrderNotFound     = apperror.New(apperror.KindNotFound, "order not found")
	ErrInvalidStatus     = apperror.New(apperror.KindValidation, "invalid status")
	ErrNotOrderOwner     = apperror.New(apperror.KindForbidden, "not authorized to access this order")
	ErrNotCancellable    = apperror.New(apperror.KindInvalidState, "only pending orders can be cancelled")
	ErrCancelWindow      = apperror.New(apperror.KindWindowExpired, "Order cancellation time limit exceeded. Orders can only be cancelled within 1 hour of placement.")
	ErrNotDeletable      = apperror.New(apperror.KindInvalidState, "Only cancelled or delivered orders can be deleted")
	ErrAdminNotDeletable = apperror.New(apperror.KindInvalidState, "Only cancelled orders can be deleted")
	ErrAuthRequired      = apperror.New(apperror.KindUnauthorized, "authentication required")
)
