package ops

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/stf"
)

// RenderFormat selects the render output format.
type RenderFormat string

const (
	RenderMarkdown RenderFormat = "markdown"
	RenderHTML     RenderFormat = "html"
)

// RenderInput contains parameters for the Render operation.
type RenderInput struct {
	Source io.Reader    // required
	Diag   io.Writer    // comment/warning sink, nil discards
	Format RenderFormat // default: markdown
}

// RenderOutput contains the result of the Render operation.
type RenderOutput struct {
	Format  RenderFormat `json:"format"`
	Content string       `json:"content"`

	FileCount int `json:"file_count"`
}

// Render converts an STF stream into a human-readable outline, as markdown
// or as HTML via goldmark.
func Render(input RenderInput) (*RenderOutput, error) {
	if input.Format == "" {
		input.Format = RenderMarkdown
	}
	if input.Format != RenderMarkdown && input.Format != RenderHTML {
		return nil, errors.NewInvalidRequest("format must be one of: markdown, html")
	}

	converted, err := Convert(ConvertInput{Source: input.Source, Diag: input.Diag})
	if err != nil {
		return nil, err
	}

	md := markdownDocument(converted.Files)

	content := md
	if input.Format == RenderHTML {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(md), &buf); err != nil {
			return nil, errors.NewInternal(err)
		}
		content = buf.String()
	}

	return &RenderOutput{
		Format:    input.Format,
		Content:   content,
		FileCount: converted.FileCount,
	}, nil
}

// markdownDocument renders the parsed files as a markdown outline.
func markdownDocument(files []*stf.FileRecord) string {
	var b strings.Builder

	for i, f := range files {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "# File %d (%s)\n\n", i+1, f.Timestamp)

		if len(f.Categories) > 0 {
			b.WriteString("## Categories\n\n")
			for _, cat := range f.Categories {
				writeCategory(&b, cat)
			}
		}

		if len(f.Items) > 0 {
			b.WriteString("## Items\n\n")
			for _, item := range f.Items {
				writeItem(&b, item)
			}
		}
	}

	return b.String()
}

func writeCategory(b *strings.Builder, cat *stf.Category) {
	fmt.Fprintf(b, "- **%s**", cat.Name)
	if len(cat.Attributes) > 0 {
		fmt.Fprintf(b, " `%s`", strings.Join(cat.Attributes, "`, `"))
	}
	b.WriteString("\n")
	if cat.Note != nil {
		fmt.Fprintf(b, "  - note: %s\n", *cat.Note)
	}
	writeConditionSet(b, "conditions", cat.Conditions)
	writeConditionSet(b, "actions", cat.Actions)
}

func writeConditionSet(b *strings.Builder, label string, cs *stf.ConditionSet) {
	if cs == nil {
		return
	}
	for _, name := range cs.Include {
		fmt.Fprintf(b, "  - %s: include %s\n", label, name)
	}
	for _, name := range cs.Exclude {
		fmt.Fprintf(b, "  - %s: exclude %s\n", label, name)
	}
}

func writeItem(b *strings.Builder, item *stf.Item) {
	text := "(no text)"
	if item.Text != nil {
		text = *item.Text
	}
	fmt.Fprintf(b, "- %s\n", text)
	if item.Note != nil {
		fmt.Fprintf(b, "  - note: %s\n", *item.Note)
	}
	for _, link := range item.Links {
		fmt.Fprintf(b, "  - [%s] %s", link.Type, link.Name)
		if link.Value != nil {
			fmt.Fprintf(b, " = %s", *link.Value)
		}
		b.WriteString("\n")
	}
}
