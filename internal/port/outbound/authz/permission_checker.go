package authz

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"
)

// Permission names checked by this service.
const (
	PermissionEditOtherUserInfo = "edit-other-user-info"
)

// PermissionChecker defines the interface to the policy engine.
type PermissionChecker interface {
	// HasPermission reports whether the caller holds the named permission.
	HasPermission(ctx context.Context, callerID types.ID, permission string) (bool, error)
}
