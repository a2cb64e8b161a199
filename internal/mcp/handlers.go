package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/stf2json/internal/config"
	"github.com/hpungsan/stf2json/internal/errors"
	"github.com/hpungsan/stf2json/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// ConvertRequest represents the arguments for stf_convert.
type ConvertRequest struct {
	STFText string `json:"stf_text"`
}

// RenderRequest represents the arguments for stf_render.
type RenderRequest struct {
	STFText string `json:"stf_text"`
	Format  string `json:"format,omitempty"`
}

// ArchiveRequest represents the arguments for stf_archive.
type ArchiveRequest struct {
	STFText string  `json:"stf_text"`
	Label   *string `json:"label,omitempty"`
}

// RetrieveRequest represents the arguments for stf_retrieve.
type RetrieveRequest struct {
	ImportID string `json:"import_id"`
}

// NormalizeDateRequest represents the arguments for stf_normalize_date.
type NormalizeDateRequest struct {
	Text   string `json:"text"`
	Format int    `json:"format,omitempty"`
}

// Handler implementations

// HandleConvert handles the stf_convert tool call.
func (h *Handlers) HandleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ConvertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.STFText == "" {
		return errorResult(errors.NewInvalidRequest("stf_text is required")), nil
	}

	result, err := ops.Convert(ops.ConvertInput{
		Source: strings.NewReader(input.STFText),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRender handles the stf_render tool call.
func (h *Handlers) HandleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.STFText == "" {
		return errorResult(errors.NewInvalidRequest("stf_text is required")), nil
	}

	result, err := ops.Render(ops.RenderInput{
		Source: strings.NewReader(input.STFText),
		Format: ops.RenderFormat(input.Format),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleArchive handles the stf_archive tool call.
func (h *Handlers) HandleArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ArchiveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.STFText == "" {
		return errorResult(errors.NewInvalidRequest("stf_text is required")), nil
	}

	result, err := ops.Archive(h.db, ops.ArchiveInput{
		Source: strings.NewReader(input.STFText),
		Label:  input.Label,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRetrieve handles the stf_retrieve tool call.
func (h *Handlers) HandleRetrieve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RetrieveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Retrieve(h.db, ops.RetrieveInput{
		ImportID: input.ImportID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListArchive handles the stf_list_archive tool call.
func (h *Handlers) HandleListArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListArchive(h.db, ops.ListArchiveInput{})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleNormalizeDate handles the stf_normalize_date tool call.
func (h *Handlers) HandleNormalizeDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NormalizeDateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.NormalizeDate(ops.NormalizeDateInput{
		Format: input.Format,
		Text:   input.Text,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if stfErr, ok := err.(*errors.STFError); ok {
		errorObj := map[string]any{
			"code":    stfErr.Code,
			"message": stfErr.Message,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if stfErr.Code != errors.ErrInternal && stfErr.Details != nil {
			errorObj["details"] = stfErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
