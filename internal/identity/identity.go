// Package identity carries the resolved caller through every mutating
// operation. Services take a Caller argument explicitly; nothing reads
// ambient session state.
package identity

import (
	"github.com/govichain/engine/internal/models"
	appErr "github.com/govichain/engine/pkg/errors"
)

// Caller is the authenticated identity resolved from a request credential.
type Caller struct {
	UserID   uint
	Username string
	Role     models.Role
}

// RequireRole fails with a forbidden error unless the caller holds one of
// the allowed roles. It is a pure check with no side effects.
func RequireRole(c Caller, allowed ...models.Role) error {
	for _, r := range allowed {
		if c.Role == r {
			return nil
		}
	}
	return appErr.Newf(appErr.CodeForbidden, "role %s is not permitted to perform this action", c.Role)
}
