// Package mcp provides an MCP (Model Context Protocol) server adapter for docent.
// It lets AI assistants ask questions against the indexed documents and manage them.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
