package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultSession is used when a tool call names no session.
const DefaultSession = "mcp"

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Session  string `json:"session,omitempty" jsonschema:"conversation id; turns in the same session share history (default mcp)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	State   string   `json:"state"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one indexed document.
type DocumentOutput struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of a PDF or text file to index"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// NameInput identifies a document.
type NameInput struct {
	Name string `json:"name" jsonschema:"document name as shown by list_documents"`
}

// SessionInput identifies a session.
type SessionInput struct {
	Session string `json:"session,omitempty" jsonschema:"conversation id (default mcp)"`
}

// StatusOutput reports a completed action.
type StatusOutput struct {
	Status string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents and cite the documents used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents with their chunk counts",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Index a PDF or text file, replacing any earlier version with the same name",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document from the index",
	}, s.handleDelete)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_session",
		Description: "Forget the conversation history of a session",
	}, s.handleResetSession)
}

func sessionOrDefault(id string) string {
	if id == "" {
		return DefaultSession
	}
	return id
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, sessionOrDefault(input.Session), input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, AskOutput{
		Answer:  answer.Text,
		Sources: sources,
		State:   answer.State.String(),
	}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.Documents(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, d := range docs {
		output.Documents[i] = DocumentOutput{Name: d.Name, Chunks: d.ChunkCount}
	}
	return nil, output, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	name, n, err := s.ports.Document.Import(ctx, input.Path)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{Name: name, Chunks: n}, nil
}

func (s *Server) handleDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NameInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ports.Document.Delete(ctx, input.Name); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: "deleted"}, nil
}

func (s *Server) handleResetSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ports.Chat.ResetSession(ctx, sessionOrDefault(input.Session)); err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: "reset"}, nil
}
