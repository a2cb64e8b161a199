package ops

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/stf2json/internal/errors"
)

func TestRender_Markdown(t *testing.T) {
	out, err := Render(RenderInput{Source: strings.NewReader(sampleSTF)})
	require.NoError(t, err)

	require.Equal(t, RenderMarkdown, out.Format)
	require.Equal(t, 1, out.FileCount)
	require.Contains(t, out.Content, "# File 1 (2020-10-05T08:00:00Z)")
	require.Contains(t, out.Content, "## Categories")
	require.Contains(t, out.Content, "**Errands\\**")
	require.Contains(t, out.Content, "note: weekly chores")
	require.Contains(t, out.Content, "## Items")
	require.Contains(t, out.Content, "- buy milk")
	require.Contains(t, out.Content, "[standard] Errands")
}

func TestRender_DefaultsToMarkdown(t *testing.T) {
	out, err := Render(RenderInput{Source: strings.NewReader(sampleSTF), Format: ""})
	require.NoError(t, err)
	require.Equal(t, RenderMarkdown, out.Format)
}

func TestRender_HTML(t *testing.T) {
	out, err := Render(RenderInput{Source: strings.NewReader(sampleSTF), Format: RenderHTML})
	require.NoError(t, err)

	require.Equal(t, RenderHTML, out.Format)
	require.Contains(t, out.Content, "<h1")
	require.Contains(t, out.Content, "<li>")
	require.NotContains(t, out.Content, "# File 1")
}

func TestRender_ConditionsAndDateLinks(t *testing.T) {
	in := "{STF}10/05/20;08:00:00;002" +
		"{C}Todo\\{p}{C}Urgent{+}{C}Done{-}{;}{.}" +
		"{I}{T}dentist{C}When@|10/6/2020 9:00{!}"

	out, err := Render(RenderInput{Source: strings.NewReader(in)})
	require.NoError(t, err)
	require.Contains(t, out.Content, "conditions: include Urgent")
	require.Contains(t, out.Content, "conditions: exclude Done")
	require.Contains(t, out.Content, "[date] When = 2020-10-06T09:00:00Z")
}

func TestRender_InvalidFormat(t *testing.T) {
	_, err := Render(RenderInput{Source: strings.NewReader(sampleSTF), Format: "pdf"})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestRender_PropagatesParseError(t *testing.T) {
	_, err := Render(RenderInput{Source: strings.NewReader("{STF}not-a-date{!}")})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrDateFormat))
}
