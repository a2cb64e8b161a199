package ops

import (
	"io"

	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/stf"
)

// ConvertInput contains parameters for the Convert operation.
type ConvertInput struct {
	Source io.Reader // required
	Diag   io.Writer // comment/warning sink, nil discards
}

// ConvertOutput contains the result of the Convert operation.
type ConvertOutput struct {
	Files         []*stf.FileRecord `json:"files"`
	FileCount     int               `json:"file_count"`
	CategoryCount int               `json:"category_count"`
	ItemCount     int               `json:"item_count"`
}

// Convert parses an STF stream into its document tree.
func Convert(input ConvertInput) (*ConvertOutput, error) {
	if input.Source == nil {
		return nil, errors.NewInvalidRequest("source is required")
	}

	builder := stf.NewBuilder(stf.NewReader(input.Source, input.Diag), input.Diag)
	doc, err := builder.Run()
	if err != nil {
		return nil, err
	}

	out := &ConvertOutput{
		Files:     doc.Files,
		FileCount: len(doc.Files),
	}
	for _, f := range doc.Files {
		out.CategoryCount += len(f.Categories)
		out.ItemCount += len(f.Items)
	}

	return out, nil
}
