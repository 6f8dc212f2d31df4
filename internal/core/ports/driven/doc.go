// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor: Reads plain text out of an uploaded file
//   - Splitter: Cuts text into overlapping chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Durable chunk + embedding storage with similarity search
//   - LLMService: Chat completions
//   - SessionStore: Conversation history per session
//   - FileStore: Raw uploaded documents
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
