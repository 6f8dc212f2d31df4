// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question-answering pipeline is split across:
//   - IndexService: embeds chunks and keeps them in a VectorStore
//   - Retriever: turns a question into a weighted context block
//   - Attributor: decides which retrieved documents an answer used
//   - ChatService: ties retrieval, completion and session memory together
//   - DocumentService: extraction, splitting and indexing of files
//
// Services are pure Go with no CGO.
package services
