package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend selects the durable vector store implementation.
type VectorBackend string

// Available vector store backends.
const (
	// VectorBackendSQLite stores vectors in a local SQLite database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant stores vectors in a Qdrant collection.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendPgvector stores vectors in PostgreSQL with the pgvector extension.
	VectorBackendPgvector VectorBackend = "pgvector"

	// VectorBackendMemory keeps vectors in process memory only.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendQdrant, VectorBackendPgvector, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// IsDurable returns true if the backend survives process restarts.
func (b VectorBackend) IsDurable() bool {
	return b != VectorBackendMemory
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendQdrant:
		return "Qdrant (server)"
	case VectorBackendPgvector:
		return "PostgreSQL + pgvector (server)"
	case VectorBackendMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// SessionBackend selects the session memory implementation.
type SessionBackend string

// Available session backends.
const (
	// SessionBackendMemory keeps sessions for the lifetime of the process.
	SessionBackendMemory SessionBackend = "memory"

	// SessionBackendBadger persists sessions in an embedded Badger database.
	SessionBackendBadger SessionBackend = "badger"
)

// IsValid returns true if the backend is recognised.
func (b SessionBackend) IsValid() bool {
	return b == SessionBackendMemory || b == SessionBackendBadger
}

// String returns the string representation.
func (b SessionBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond limits outbound embedding calls. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerSecond limits outbound completion calls. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the store implementation.
	Backend VectorBackend

	// Dimensions is the embedding vector size. Zero means "take it from the
	// embedding model" or, for an existing index, from the index itself.
	Dimensions int

	// URL is the server address for qdrant (gRPC) or the connection string for pgvector.
	URL string

	// APIKey authenticates against a remote store (qdrant).
	APIKey string

	// Collection is the collection (qdrant) or table (pgvector) name.
	Collection string
}

// SessionSettings holds session memory configuration.
type SessionSettings struct {
	// Backend selects the session store.
	Backend SessionBackend

	// TTL evicts sessions idle for longer than this. Zero disables.
	TTL time.Duration

	// MaxSessions evicts least recently used sessions beyond this count. Zero disables.
	MaxSessions int

	// SerializeRequests makes concurrent asks on the same session run one at a time.
	SerializeRequests bool
}

// ChatSettings holds question-answering parameters.
type ChatSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// HistoryTurns is the number of most recent turns sent with each prompt.
	HistoryTurns int

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the response length.
	MaxTokens int
}

// IngestSettings holds document ingestion parameters.
type IngestSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// MaxChunks rejects documents producing more chunks. Zero disables the ceiling.
	MaxChunks int

	// MaxPDFPages rejects PDFs with more pages.
	MaxPDFPages int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is the root for the index, raw documents and sessions.
	DataDir string

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds completion provider settings.
	LLM LLMSettings

	// VectorStore holds vector store settings.
	VectorStore VectorStoreSettings

	// Session holds session memory settings.
	Session SessionSettings

	// Chat holds question-answering parameters.
	Chat ChatSettings

	// Ingest holds ingestion parameters.
	Ingest IngestSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// OpenAI is the default provider for both embeddings and completions; the API key
// is normally supplied through the OPENAI_API_KEY environment variable.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendSQLite,
			Collection: "documents",
		},
		Session: SessionSettings{
			Backend:     SessionBackendMemory,
			TTL:         24 * time.Hour,
			MaxSessions: 1000,
		},
		Chat: ChatSettings{
			TopK:         8,
			HistoryTurns: 10,
			Temperature:  0.7,
			MaxTokens:    1500,
		},
		Ingest: IngestSettings{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			MaxChunks:    100,
			MaxPDFPages:  50,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support chat completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns all available vector store backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendSQLite,
		VectorBackendQdrant,
		VectorBackendPgvector,
		VectorBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
