package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/stf2json/internal/errors"
)

func TestNormalizeDate(t *testing.T) {
	out, err := NormalizeDate(NormalizeDateInput{Format: 1, Text: "10/5/2020 14:30"})
	require.NoError(t, err)
	require.Equal(t, "2020-10-05T14:30:00Z", out.Normalized)
	require.Equal(t, 1, out.Format)
}

func TestNormalizeDate_DefaultFormat(t *testing.T) {
	out, err := NormalizeDate(NormalizeDateInput{Text: "10/5/2020 14:30"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Format)
	require.Equal(t, "2020-10-05T14:30:00Z", out.Normalized)
}

func TestNormalizeDate_TrimsText(t *testing.T) {
	out, err := NormalizeDate(NormalizeDateInput{Format: 3, Text: "  5.10.2020 14:30  "})
	require.NoError(t, err)
	require.Equal(t, "5.10.2020 14:30", out.Text)
	require.Equal(t, "2020-10-05T14:30:00Z", out.Normalized)
}

func TestNormalizeDate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format int
		text   string
		code   errors.ErrorCode
	}{
		{"empty text", 1, "   ", errors.ErrInvalidRequest},
		{"format too high", 13, "10/5/2020 14:30", errors.ErrConfig},
		{"negative format", -1, "10/5/2020 14:30", errors.ErrConfig},
		{"unparseable", 1, "next tuesday", errors.ErrDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeDate(NormalizeDateInput{Format: tt.format, Text: tt.text})
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.code))
		})
	}
}
