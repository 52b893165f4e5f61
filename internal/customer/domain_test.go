package customer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netmitra/netmitra/internal/platform/httpx"
)

func TestParseStatusMapsLegacyVocabulary(t *testing.T) {
	cases := map[string]Status{
		"active":   StatusActive,
		"online":   StatusActive,
		"ACTIVE":   StatusActive,
		"inactive": StatusInactive,
		"paused":   StatusPaused,
		"offline":  StatusPaused,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	_, err := ParseStatus("suspended")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestValidateBillDate(t *testing.T) {
	day := 28
	require.NoError(t, ValidateBillDate(&day))
	require.NoError(t, ValidateBillDate(nil))

	day = 29
	require.ErrorIs(t, ValidateBillDate(&day), httpx.ErrValidation)
	day = 0
	require.ErrorIs(t, ValidateBillDate(&day), httpx.ErrValidation)
}
