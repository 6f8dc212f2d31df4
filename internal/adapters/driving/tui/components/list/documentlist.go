// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docent/internal/core/domain"
)

// DocumentList displays indexed documents in a navigable list.
type DocumentList struct {
	documents []domain.DocumentInfo
	selected  int
	offset    int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates a new document list component.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *DocumentList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *DocumentList) View() string {
	if len(l.documents) == 0 {
		return l.styles.Muted.Render("No documents indexed. Run 'docent ingest <file>' to add one.")
	}

	total := 0
	for _, d := range l.documents {
		total += d.ChunkCount
	}

	lines := make([]string, 0, l.visible()+2)
	header := fmt.Sprintf("Documents (%d, %d chunks)", len(l.documents), total)
	lines = append(lines, l.styles.Subtitle.Render(header), "")

	end := min(l.offset+l.visible(), len(l.documents))
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderDocument(i))
	}

	return strings.Join(lines, "\n")
}

func (l *DocumentList) renderDocument(index int) string {
	doc := l.documents[index]

	maxNameLen := max(l.width-20, 10)
	name := doc.Name
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}
	count := fmt.Sprintf("%d chunks", doc.ChunkCount)

	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", maxNameLen, name, count))
	}
	return l.styles.Normal.Render(fmt.Sprintf("  %-*s  ", maxNameLen, name)) + l.styles.Muted.Render(count)
}

func (l *DocumentList) visible() int {
	return max(l.height-2, 1)
}

func (l *DocumentList) adjustOffset() {
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+l.visible() {
		l.offset = l.selected - l.visible() + 1
	}
}

// SetDocuments replaces the listed documents, keeping the selection in range.
func (l *DocumentList) SetDocuments(docs []domain.DocumentInfo) {
	l.documents = docs
	if l.selected >= len(docs) {
		l.selected = max(len(docs)-1, 0)
	}
	l.offset = 0
	l.adjustOffset()
}

// Documents returns the listed documents.
func (l *DocumentList) Documents() []domain.DocumentInfo {
	return l.documents
}

// Selected returns the index of the selected document.
func (l *DocumentList) Selected() int {
	return l.selected
}

// SelectedDocument returns the selected document, or nil when the list is empty.
func (l *DocumentList) SelectedDocument() *domain.DocumentInfo {
	if l.selected < 0 || l.selected >= len(l.documents) {
		return nil
	}
	return &l.documents[l.selected]
}

// MoveUp moves selection up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
		l.adjustOffset()
	}
}

// MoveDown moves selection down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.documents)-1 {
		l.selected++
		l.adjustOffset()
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
	l.adjustOffset()
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.documents)
}

// IsEmpty returns whether the list is empty.
func (l *DocumentList) IsEmpty() bool {
	return len(l.documents) == 0
}
