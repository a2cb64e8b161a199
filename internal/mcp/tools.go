package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Conversion tools take the STF text inline; archive tools
// address stored imports by their ULID.

var convertToolDef = mcp.NewTool("stf_convert",
	mcp.WithDescription("Convert Lotus Agenda STF text to a structured JSON document tree."),
	mcp.WithString("stf_text",
		mcp.Required(),
		mcp.Description("Raw STF text, starting with an {STF} header chunk."),
	),
)

var renderToolDef = mcp.NewTool("stf_render",
	mcp.WithDescription("Render Lotus Agenda STF text as a human-readable outline."),
	mcp.WithString("stf_text",
		mcp.Required(),
		mcp.Description("Raw STF text, starting with an {STF} header chunk."),
	),
	mcp.WithString("format",
		mcp.Description("Output format: markdown (default) or html."),
	),
)

var archiveToolDef = mcp.NewTool("stf_archive",
	mcp.WithDescription("Convert STF text and store the result as a new archive import."),
	mcp.WithString("stf_text",
		mcp.Required(),
		mcp.Description("Raw STF text, starting with an {STF} header chunk."),
	),
	mcp.WithString("label",
		mcp.Description("Optional human-readable label for the import."),
	),
)

var retrieveToolDef = mcp.NewTool("stf_retrieve",
	mcp.WithDescription("Retrieve an archived import's converted files by import ID."),
	mcp.WithString("import_id",
		mcp.Required(),
		mcp.Description("ULID of the import, as returned by stf_archive."),
	),
)

var listArchiveToolDef = mcp.NewTool("stf_list_archive",
	mcp.WithDescription("List archived imports, most recent first."),
)

var normalizeDateToolDef = mcp.NewTool("stf_normalize_date",
	mcp.WithDescription("Normalize a legacy Agenda date string to an ISO-8601 timestamp."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The legacy date string, e.g. \"10/5/2020 14:30\"."),
	),
	mcp.WithNumber("format",
		mcp.Description("Legacy format number 1-12 (default 1)."),
	),
)
