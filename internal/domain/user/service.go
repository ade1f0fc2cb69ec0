// Package user manages customer and administrator accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/model"
	"github.com/example/ec-storefront/internal/validation"
)

var adminRoles = []string{model.RoleAdmin, model.RoleSuperAdmin}

type Service struct {
	users store.UserStore
	now   func() time.Time
}

func NewService(users store.UserStore) *Service {
	return &Service{users: users, now: time.Now}
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.create(ctx, in, model.RoleCustomer)
}

// Authenticate checks the credentials. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*model.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(in.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListCustomers returns customer accounts, newest first.
func (s *Service) ListCustomers(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx, model.RoleCustomer)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*model.User, error) {
	return s.getWithRole(ctx, id, ErrCustomerNotFound, model.RoleCustomer)
}

// CreateCustomer lets an administrator open a customer account.
func (s *Service) CreateCustomer(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.create(ctx, in, model.RoleCustomer)
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.delete(ctx, id, ErrCustomerNotFound)
}

func (s *Service) ListAdmins(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx, adminRoles...)
}

func (s *Service) CreateAdmin(ctx context.Context, in AdminInput) (*model.User, error) {
	if err := validation.Var("role", in.Role, "omitempty,oneof=admin super-admin"); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleAdmin
	}
	return s.create(ctx, in.RegisterInput, role)
}

// DeleteAdmin removes an administrator other than the acting one.
func (s *Service) DeleteAdmin(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrDeleteSelf
	}
	if _, err := s.getWithRole(ctx, id, ErrAdminNotFound, adminRoles...); err != nil {
		return err
	}
	return s.delete(ctx, id, ErrAdminNotFound)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (*model.User, error) {
	in = in.trimmed()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	switch role {
	case model.RoleCustomer, model.RoleAdmin, model.RoleSuperAdmin:
	default:
		return nil, ErrInvalidRole
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, ErrPasswordTooShort
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Printf("[User] Created %s account %s", role, u.ID)
	return u, nil
}

func (s *Service) getWithRole(ctx context.Context, id string, notFound error, roles ...string) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	return nil, notFound
}

func (s *Service) delete(ctx context.Context, id string, notFound error) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	log.Printf("[User] Deleted account %s", id)
	return nil
}
