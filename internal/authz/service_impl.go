package authz

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectClaim      = "claim"
	ObjectCompliance = "compliance"
	ObjectInspection = "inspection"
	ObjectLegalCase  = "legal_case"
	ObjectRegion     = "region"
	ObjectBranch     = "branch"
	ObjectUser       = "user"
	ObjectAuditLog   = "audit_log"
	ObjectDashboard  = "dashboard"
)

const (
	ActionView    = "view"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionReview  = "review"
	ActionApprove = "approve"
	ActionImport  = "import"
	ActionExport  = "export"
	ActionManage  = "manage"
)

var (
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	// Authorize checks whether a role class may perform an action on an
	// object. Roles come from the verified access token, not the DB.
	Authorize(ctx context.Context, role, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authz.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(_ context.Context, role, object, action string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := "role:" + role
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	recordObjects := []string{ObjectClaim, ObjectCompliance, ObjectInspection, ObjectLegalCase}

	var policies [][]string

	// Officers are read-only.
	for _, obj := range recordObjects {
		policies = append(policies, []string{"role:officer", obj, ActionView})
	}
	policies = append(policies, []string{"role:officer", ObjectDashboard, ActionView})
	policies = append(policies,
		[]string{"role:officer", ObjectRegion, ActionView},
		[]string{"role:officer", ObjectBranch, ActionView},
	)

	// Regional staff work their own region: full record handling plus
	// review, but never approve.
	for _, obj := range recordObjects {
		policies = append(policies,
			[]string{"role:regional", obj, ActionCreate},
			[]string{"role:regional", obj, ActionUpdate},
			[]string{"role:regional", obj, ActionReview},
			[]string{"role:regional", obj, ActionImport},
			[]string{"role:regional", obj, ActionExport},
		)
	}

	// Managers additionally approve and manage lookups.
	for _, obj := range recordObjects {
		policies = append(policies, []string{"role:manager", obj, ActionApprove})
	}
	policies = append(policies,
		[]string{"role:manager", ObjectRegion, ActionCreate},
		[]string{"role:manager", ObjectRegion, ActionUpdate},
		[]string{"role:manager", ObjectBranch, ActionCreate},
		[]string{"role:manager", ObjectBranch, ActionUpdate},
		[]string{"role:manager", ObjectAuditLog, ActionView},
	)

	// Admins get everything, including user management and deletions.
	policies = append(policies,
		[]string{"role:admin", ObjectRegion, ActionDelete},
		[]string{"role:admin", ObjectBranch, ActionDelete},
		[]string{"role:admin", ObjectUser, ActionView},
		[]string{"role:admin", ObjectUser, ActionManage},
		[]string{"role:admin", ObjectAuditLog, ActionView},
	)

	groupings := [][]string{
		// Each role class inherits everything below it.
		{"role:regional", "role:officer"},
		{"role:manager", "role:regional"},
		{"role:admin", "role:manager"},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping); err != nil {
			return err
		}
	}
	return nil
}
