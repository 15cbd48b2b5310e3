package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	appErr "github.com/govichain/engine/pkg/errors"
)

func TestRequireRole(t *testing.T) {
	auditor := identity.Caller{UserID: 1, Username: "aud", Role: models.RoleAuditor}

	assert.NoError(t, identity.RequireRole(auditor, models.RoleAuditor))
	assert.NoError(t, identity.RequireRole(auditor, models.RoleGovernment, models.RoleAuditor))

	err := identity.RequireRole(auditor, models.RoleGovernment)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	err = identity.RequireRole(auditor)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden), "empty allow list denies everyone")
}
