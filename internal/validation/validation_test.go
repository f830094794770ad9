package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateBoardName(t *testing.T) {
	require.NoError(t, ValidateBoardName("Living room"))
	require.ErrorIs(t, ValidateBoardName(""), ErrNameRequired)
	require.ErrorIs(t, ValidateBoardName("   "), ErrNameRequired)
	require.ErrorIs(t, ValidateBoardName(strings.Repeat("x", 121)), ErrNameTooLong)
}

func TestValidateHexColor(t *testing.T) {
	require.NoError(t, ValidateHexColor("#000000"))
	require.NoError(t, ValidateHexColor("#AaBbCc"))
	require.ErrorIs(t, ValidateHexColor("000000"), ErrInvalidColor)
	require.ErrorIs(t, ValidateHexColor("#fff"), ErrInvalidColor)
	require.ErrorIs(t, ValidateHexColor("#gggggg"), ErrInvalidColor)
}

func TestValidateFontWeight(t *testing.T) {
	require.NoError(t, ValidateFontWeight("normal"))
	require.NoError(t, ValidateFontWeight("bold"))
	require.ErrorIs(t, ValidateFontWeight("bolder"), ErrInvalidFontWeight)
}
