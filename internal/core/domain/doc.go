// Package domain defines the core business entities for docent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded slice of a document's text plus its embedding
//   - RetrievedChunk: A chunk returned by a similarity query, with its rank
//   - SourceAggregate: Per-document relevance accumulated over one query
//   - Turn: One user/assistant exchange within a session
//   - Answer: The result of asking a question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
