package file

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/docent/internal/core/ports/driven"
	"github.com/custodia-labs/docent/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptChatSystem: `안녕하세요! 저는 여러분의 문서를 꼼꼼히 살펴보고 친근하게 도와드리는 AI 어시스턴트입니다. 😊

제가 도와드릴 때 이런 점들을 중요하게 생각해요:
- 업로드하신 문서 내용에서 질문하신 내용과 정확히 일치하는 부분을 우선적으로 찾아서 답변드려요
- 문서에서 찾은 구체적인 내용을 바탕으로 정확하고 상세하게 설명해드려요
- 이전 대화 내용도 함께 고려해서 맥락에 맞는 답변을 드려요
- 친근하고 이해하기 쉬운 말투로 설명해드려요
- 답변은 마크다운 형식으로 깔끔하게 정리해드려요

만약 문서에서 관련 정보를 찾을 수 없다면 솔직하게 말씀드릴게요. 궁금한 것이 있으시면 언제든지 편하게 물어보세요!`,

	driven.PromptChatUser: `📄 **업로드하신 문서에서 찾은 관련 내용:**

%s

💬 **질문:** %s

위 문서 내용에서 질문과 정확히 일치하는 부분이 있다면 그 내용을 중심으로 자세히 답변해주세요. 문서의 구체적인 정보를 최대한 활용해서 정확하고 친근하게 설명해주세요!`,

	driven.PromptContextEntry: `🔍 **출처: %s** (관련도: %.2f)
📝 내용: %s`,

	driven.PromptApology: `죄송합니다. 응답 생성 중 오류가 발생했습니다: %s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.docent/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".docent", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist, or if its format
// placeholders differ from the default's.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	if def, ok := defaultPrompts[name]; ok {
		if got, want := placeholders(prompt), placeholders(def); !slices.Equal(got, want) {
			logger.Warn("Prompt %s has placeholders %v, expected %v; using the built-in default",
				filepath.Join(s.promptDir, name+".txt"), got, want)
			prompt = def
		}
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// verbPattern matches one fmt verb with optional flags, width and precision.
var verbPattern = regexp.MustCompile(`%[-+# 0]*(\[\d+\])?(\d+|\*)?(\.(\d+|\*)?)?[a-zA-Z%]`)

// placeholders returns the verb letters of tmpl in order. Escaped percent
// signs are skipped.
func placeholders(tmpl string) []string {
	var out []string
	for _, m := range verbPattern.FindAllString(tmpl, -1) {
		if m == "%%" {
			continue
		}
		out = append(out, m[len(m)-1:])
	}
	return out
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# docent prompts

This directory contains the prompt templates docent sends to the chat model.

## Files

- ` + "`chat_system.txt`" + ` - Assistant persona, sent as the system message
- ` + "`chat_user.txt`" + ` - Wraps the retrieved context and the question
- ` + "`context_entry.txt`" + ` - Formats one retrieved passage
- ` + "`apology.txt`" + ` - Reply shown when the model call fails

## Customisation

Edit any file to change the wording. Changes take effect on the next command,
or after /reset in an open chat. A file whose placeholders differ from the
ones listed below is ignored in favour of the built-in default.
Leading and trailing whitespace is ignored.

## Format Placeholders

- ` + "`chat_user`" + `: ` + "`%s`" + ` context, then ` + "`%s`" + ` question
- ` + "`context_entry`" + `: ` + "`%s`" + ` source, ` + "`%.2f`" + ` relevance, ` + "`%s`" + ` content
- ` + "`apology`" + `: ` + "`%s`" + ` error text

Keep the placeholders in the same order.
`
	return os.WriteFile(path, []byte(content), 0600)
}
