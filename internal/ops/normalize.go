package ops

import (
	"strings"

	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/stf"
)

// NormalizeDateInput contains parameters for the NormalizeDate operation.
type NormalizeDateInput struct {
	Format int    // 1..12, default: 1
	Text   string // required
}

// NormalizeDateOutput contains the result of the NormalizeDate operation.
type NormalizeDateOutput struct {
	Format     int    `json:"format"`
	Text       string `json:"text"`
	Normalized string `json:"normalized"`
}

// NormalizeDate converts a legacy Agenda date string to an ISO-8601 timestamp
// using one of the numbered legacy formats.
func NormalizeDate(input NormalizeDateInput) (*NormalizeDateOutput, error) {
	if input.Format == 0 {
		input.Format = 1
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	normalized, err := stf.NormalizeTimestamp(input.Format, text)
	if err != nil {
		return nil, err
	}

	return &NormalizeDateOutput{
		Format:     input.Format,
		Text:       text,
		Normalized: normalized,
	}, nil
}
