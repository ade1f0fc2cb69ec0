package user

import "github.com/example/ec-storefront/internal/apperror"

var (
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "User not found")
	ErrCustomerNotFound   = apperror.New(apperror.KindNotFound, "Customer not found")
	ErrAdminNotFound      = apperror.New(apperror.KindNotFound, "Admin not found")
	ErrEmailTaken         = apperror.New(apperror.KindConflict, "Email already registered")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "Incorrect email or password")
	ErrPasswordTooShort   = apperror.Validation("password", "password must be at least 8 characters")
	ErrInvalidRole        = apperror.Validation("role", "role must be admin or super-admin")
	ErrDeleteSelf         = apperror.New(apperror.KindInvalidState, "You cannot delete your own account")
)
