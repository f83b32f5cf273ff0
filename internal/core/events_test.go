package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitReasonFromCode(t *testing.T) {
	tests := []struct {
		code int
		want ExitReason
	}{
		{0, ExitReasonSelf},
		{1, ExitReasonKicked},
		{2, ExitReasonDissolved},
		{3, ExitReasonUnknown},
		{-1, ExitReasonUnknown},
		{99, ExitReasonUnknown},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ExitReasonFromCode(tt.code), "code %d", tt.code)
	}
}

func TestExitReasonStrings(t *testing.T) {
	require.Equal(t, "left room voluntarily", ExitReasonSelf.String())
	require.Equal(t, "kicked by server", ExitReasonKicked.String())
	require.Equal(t, "room dissolved", ExitReasonDissolved.String())
	require.Equal(t, "unknown reason", ExitReasonUnknown.String())
}
