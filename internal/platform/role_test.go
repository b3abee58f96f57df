package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"console", RoleConsole, false},
		{"Multimedia", RoleMultimedia, false},
		{" communications ", RoleCommunications, false},
		{"speakers", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Role {
	t.Helper()
	r, err := ParseRole(s)
	require.NoError(t, err)
	return r
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRoles, roles)

	roles, err = ParseRoles([]string{"multimedia", "console", "multimedia"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleMultimedia, RoleConsole}, roles)

	_, err = ParseRoles([]string{"console", "bogus"})
	assert.Error(t, err)
}
