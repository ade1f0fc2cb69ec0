package auth

import (
	"errors"

	"github.com/example/ec-storefront/internal/model"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Action names an operation guarded by the policy.
type Action string

const (
	ActionOrderRead       Action = "order:read"
	ActionOrderCancel     Action = "order:cancel"
	ActionOrderDelete     Action = "order:delete"
	ActionOrderManage     Action = "order:manage"
	ActionDashboardRead   Action = "dashboard:read"
	ActionCatalogManage   Action = "catalog:manage"
	ActionReviewWrite     Action = "review:write"
	ActionReviewModerate  Action = "review:moderate"
	ActionSettingsManage  Action = "settings:manage"
	ActionCustomersManage Action = "customers:manage"
	ActionAdminsManage    Action = "admins:manage"
	ActionPaymentUse      Action = "payment:use"
	ActionPaymentRefund   Action = "payment:refund"
	ActionAnalyticsRead   Action = "analytics:read"
)

// Subject is the caller. An empty ID is a guest.
type Subject struct {
	ID   string
	Role string
}

func (s Subject) Authenticated() bool { return s.ID != "" }

func (s Subject) IsAdmin() bool {
	return s.Role == model.RoleAdmin || s.Role == model.RoleSuperAdmin
}

// Resource describes the target of an action. OwnerID is empty for
// resources without an owner.
type Resource struct {
	OwnerID string
}

type rule func(Subject, Resource) bool

func ownerOrAdmin(s Subject, r Resource) bool {
	return s.IsAdmin() || (r.OwnerID != "" && s.ID == r.OwnerID)
}

func owner(s Subject, r Resource) bool {
	return r.OwnerID != "" && s.ID == r.OwnerID
}

func admin(s Subject, _ Resource) bool { return s.IsAdmin() }

func superAdmin(s Subject, _ Resource) bool { return s.Role == model.RoleSuperAdmin }

func anyUser(s Subject, _ Resource) bool { return true }

var policy = map[Action]rule{
	ActionOrderRead:       ownerOrAdmin,
	ActionOrderCancel:     owner,
	ActionOrderDelete:     owner,
	ActionOrderManage:     admin,
	ActionDashboardRead:   admin,
	ActionCatalogManage:   admin,
	ActionReviewWrite:     anyUser,
	ActionReviewModerate:  admin,
	ActionSettingsManage:  admin,
	ActionCustomersManage: admin,
	ActionAdminsManage:    superAdmin,
	ActionPaymentUse:      anyUser,
	ActionPaymentRefund:   admin,
	ActionAnalyticsRead:   admin,
}

// Authorize is the single access decision point. It returns
// ErrUnauthenticated for guests and ErrForbidden when the rule denies.
func Authorize(s Subject, action Action, r Resource) error {
	if !s.Authenticated() {
		return ErrUnauthenticated
	}
	allow, ok := policy[action]
	if !ok || !allow(s, r) {
		return ErrForbidden
	}
	return nil
}
