package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode round-trips the raw tool arguments through JSON into one of the
// typed request structs, so handlers never pull fields out of the argument
// map by hand.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var parsed T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return parsed, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return parsed, fmt.Errorf("decode arguments: %w", err)
	}
	return parsed, nil
}
