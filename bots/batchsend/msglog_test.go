package batchsend

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	l := NewMessageLog()
	l.Record(-100, 1, "first")
	l.Record(-100, 2, "second")
	l.Record(-200, 3, "other chat")

	entries := l.Entries(-100)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].MessageID)
	assert.Equal(t, 2, entries[1].MessageID)
	assert.Len(t, l.Entries(-200), 1)
}

func TestRecordEvictsOldestBeyondLimit(t *testing.T) {
	l := NewMessageLog()
	for i := 1; i <= maxLogged+10; i++ {
		l.Record(-100, i, fmt.Sprintf("msg %d", i))
	}

	entries := l.Entries(-100)
	require.Len(t, entries, maxLogged)
	assert.Equal(t, 11, entries[0].MessageID, "oldest ten should be evicted")
	assert.Equal(t, maxLogged+10, entries[len(entries)-1].MessageID)
}

func TestSnippetTruncationAndPlaceholder(t *testing.T) {
	assert.Equal(t, "Non-text", snippetOf(""))
	assert.Equal(t, "short", snippetOf("short"))

	long := strings.Repeat("a", 50)
	assert.Equal(t, strings.Repeat("a", snippetRunes), snippetOf(long))

	// Rune-based, not byte-based.
	cyrillic := strings.Repeat("ж", 40)
	assert.Equal(t, strings.Repeat("ж", snippetRunes), snippetOf(cyrillic))
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := NewMessageLog()
	l.Record(-100, 1, "hello")

	entries := l.Entries(-100)
	entries[0].Snippet = "mutated"

	assert.Equal(t, "hello", l.Entries(-100)[0].Snippet)
}
