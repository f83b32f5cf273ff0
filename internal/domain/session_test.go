package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleProviderCodes(t *testing.T) {
	require.Equal(t, 20, RoleAnchor.ProviderCode())
	require.Equal(t, 21, RoleAudience.ProviderCode())
	// Unknown roles enter as audience.
	require.Equal(t, 21, Role("moderator").ProviderCode())
}

func TestGeneratedUserIDShape(t *testing.T) {
	id := GenerateUserID()
	require.True(t, strings.HasPrefix(string(id), "user_"))
	require.LessOrEqual(t, len(id), len("user_")+5)
}

func TestDefaultUserNameStripsPrefix(t *testing.T) {
	require.Equal(t, "user42", DefaultUserName("user_42"))
}
