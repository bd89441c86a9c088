// Package mcp provides an MCP (Model Context Protocol) server adapter
// for Recall. It lets AI assistants search the local store and ask
// questions answered from it.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
