package payment

import "github.com/example/ec-storefront/internal/apperror"

var (
	ErrAmountRequired   = apperror.Validation("amount", "Amount and order ID are required")
	ErrOrderIDRequired  = apperror.Validation("orderId", "Amount and order ID are required")
	ErrIntentIDRequired = apperror.Validation("paymentIntentId", "Payment intent ID is required")
	ErrMethodIDRequired = apperror.Validation("paymentMethodId", "Payment method ID is required")
	ErrInvalidAmount    = apperror.Validation("amount", "amount must be greater than zero")
	ErrInvalidCurrency  = apperror.Validation("currency", "currency must be a three-letter ISO code")
	ErrNotCompleted     = apperror.New(apperror.KindInvalidState, "Payment not completed")
	ErrNoCustomer       = apperror.New(apperror.KindInvalidState, "No payment customer on file")
	ErrInvalidSignature = apperror.New(apperror.KindValidation, "Webhook signature verification failed")
	ErrInvalidPayload   = apperror.New(apperror.KindValidation, "Webhook payload could not be parsed")
)
