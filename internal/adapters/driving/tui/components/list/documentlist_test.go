package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/core/domain"
)

func sampleDocuments() []domain.DocumentInfo {
	return []domain.DocumentInfo{
		{Name: "alpha.pdf", ChunkCount: 4},
		{Name: "beta.txt", ChunkCount: 1},
		{Name: "gamma.pdf", ChunkCount: 7},
	}
}

func TestNewDocumentList(t *testing.T) {
	l := NewDocumentList(nil)

	require.NotNil(t, l)
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.SelectedDocument())
	assert.Nil(t, l.Init())
}

func TestDocumentList_EmptyView(t *testing.T) {
	assert.Contains(t, NewDocumentList(nil).View(), "No documents indexed")
}

func TestDocumentList_View(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())

	view := l.View()

	assert.Contains(t, view, "Documents (3, 12 chunks)")
	assert.Contains(t, view, "alpha.pdf")
	assert.Contains(t, view, "7 chunks")
}

func TestDocumentList_Navigation(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, l.Selected())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected())
	assert.Equal(t, "gamma.pdf", l.SelectedDocument().Name)

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
}

func TestDocumentList_SetDocumentsClampsSelection(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDocuments(sampleDocuments())
	l.MoveDown()
	l.MoveDown()

	l.SetDocuments(sampleDocuments()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestDocumentList_Scrolls(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDimensions(80, 3) // one visible row
	l.SetDocuments(sampleDocuments())

	l.MoveDown()
	l.MoveDown()

	view := l.View()
	assert.Contains(t, view, "gamma.pdf")
	assert.NotContains(t, view, "alpha.pdf")
}

func TestDocumentList_TruncatesLongNames(t *testing.T) {
	l := NewDocumentList(nil)
	l.SetDimensions(30, 10)
	l.SetDocuments([]domain.DocumentInfo{{Name: "a-very-long-document-name-indeed.pdf", ChunkCount: 1}})

	assert.Contains(t, l.View(), "...")
}
