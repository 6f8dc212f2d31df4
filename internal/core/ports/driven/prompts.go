package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the built-in default
	// or an error for unknown names.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptChatSystem is the assistant persona sent as the system message.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptChatUser wraps the retrieved context and the question.
	// The template expects two %s placeholders: context, then question.
	PromptChatUser = "chat_user"

	// PromptContextEntry formats one retrieved chunk in the context block.
	// The template expects %s (source), %.2f (weight) and %s (content).
	PromptContextEntry = "context_entry"

	// PromptApology is returned to the user when completion fails.
	// The template expects a %s placeholder for the error text.
	PromptApology = "apology"
)
