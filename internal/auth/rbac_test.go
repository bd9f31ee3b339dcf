package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPermission(t *testing.T) {
	tests := []struct {
		role   Role
		domain Domain
		action Action
		want   bool
	}{
		{RoleAdmin, DomainDatasets, ActionView, true},
		{RoleAdmin, DomainCybersecurity, ActionEdit, true},
		{RoleAdmin, DomainITTickets, ActionDelete, true},

		{RoleUser, DomainDatasets, ActionView, true},
		{RoleUser, DomainDatasets, ActionEdit, false},
		{RoleUser, DomainITTickets, ActionDelete, false},

		{RoleDatasetsAdmin, DomainDatasets, ActionEdit, true},
		{RoleDatasetsAdmin, DomainDatasets, ActionDelete, true},
		{RoleDatasetsAdmin, DomainCybersecurity, ActionView, true},
		{RoleDatasetsAdmin, DomainCybersecurity, ActionEdit, false},

		{RoleCybersecurityAdmin, DomainCybersecurity, ActionDelete, true},
		{RoleCybersecurityAdmin, DomainDatasets, ActionView, true},
		{RoleCybersecurityAdmin, DomainDatasets, ActionDelete, false},

		{RoleITAdmin, DomainITTickets, ActionEdit, true},
		{RoleITAdmin, DomainDatasets, ActionEdit, false},
		{RoleITAdmin, DomainCybersecurity, ActionView, true},

		{Role("unknown"), DomainDatasets, ActionView, false},
		{Role(""), DomainDatasets, ActionView, false},
	}

	for _, tc := range tests {
		name := fmt.Sprintf("%s_%s_%s", tc.role, tc.domain, tc.action)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, CheckPermission(tc.role, tc.domain, tc.action))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("tickets_admin")
	assert.True(t, ok)
	assert.Equal(t, RoleITAdmin, role)

	role, ok = ParseRole("datasets_admin")
	assert.True(t, ok)
	assert.Equal(t, RoleDatasetsAdmin, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}
