package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/glcore/internal/errcode"
	"github.com/cleared-dev/glcore/internal/model"
)

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrForbidden      = errors.New("forbidden")
)

// PostingPolicy is the segregation-of-duties hook: it decides whether the
// actor in pc may post journals of type jt.
type PostingPolicy interface {
	Authorize(ctx context.Context, pc model.PostingContext, jt model.JournalType) error
}

// PermissionError is a rejected posting context.
type PermissionError struct {
	Code        errcode.Code
	Context     model.PostingContext
	JournalType model.JournalType
	Err         error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: user %q (role %q) on journal type %s: %v",
		e.Code, e.Context.UserID, e.Context.UserRole, e.JournalType, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ValidateContext checks that the posting scope and actor are identified.
func ValidateContext(pc model.PostingContext) error {
	switch {
	case strings.TrimSpace(pc.TenantID) == "":
		return ErrInvalidTenant
	case strings.TrimSpace(pc.CompanyID) == "":
		return ErrInvalidCompany
	case strings.TrimSpace(pc.UserID) == "":
		return ErrInvalidUser
	}
	return nil
}

// AllowAll permits every posting.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, model.PostingContext, model.JournalType) error {
	return nil
}

// RolePolicy permits a posting when the actor's role is listed for the
// journal type. Roles compare case-insensitively.
type RolePolicy struct {
	allowed map[model.JournalType]map[string]bool
}

// NewRolePolicy builds a RolePolicy from journal type -> roles.
func NewRolePolicy(permissions map[model.JournalType][]string) *RolePolicy {
	allowed := make(map[model.JournalType]map[string]bool, len(permissions))
	for jt, roles := range permissions {
		set := make(map[string]bool, len(roles))
		for _, r := range roles {
			set[strings.ToUpper(strings.TrimSpace(r))] = true
		}
		allowed[jt] = set
	}
	return &RolePolicy{allowed: allowed}
}

// Authorize implements PostingPolicy.
func (p *RolePolicy) Authorize(_ context.Context, pc model.PostingContext, jt model.JournalType) error {
	role := strings.ToUpper(strings.TrimSpace(pc.UserRole))
	if role != "" && p.allowed[jt][role] {
		return nil
	}
	return fmt.Errorf("role %q may not post %s journals: %w", pc.UserRole, jt, ErrForbidden)
}
