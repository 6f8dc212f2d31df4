package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// DocumentName derives a safe document name from a file path or upload name.
// Directory components are dropped, path and shell metacharacters removed,
// whitespace runs collapsed to "_" and leading dots trimmed. Unicode letters
// are kept so non-Latin filenames survive.
func DocumentName(path string) (string, error) {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range base {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsControl(r), strings.ContainsRune(`<>:"|?*`, r):
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	name := strings.TrimLeft(b.String(), "._")
	if name == "" {
		return "", fmt.Errorf("%w: no usable file name in %q", ErrInvalidInput, path)
	}
	return name, nil
}
