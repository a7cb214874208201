package batchsend

import "sync"

const (
	// maxLogged bounds the per-chat message log.
	maxLogged = 100
	// snippetRunes bounds the stored text preview.
	snippetRunes = 30
)

// LoggedMessage is one entry of the table-of-contents index.
type LoggedMessage struct {
	MessageID int
	Snippet   string
}

// MessageLog keeps a bounded, append-only index of recent messages per
// chat, feeding the /toc listing. Oldest entries are evicted first.
type MessageLog struct {
	mu    sync.RWMutex
	chats map[int64][]LoggedMessage
}

// NewMessageLog builds an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{chats: make(map[int64][]LoggedMessage)}
}

// Record appends a message to the chat's log. Empty text is stored as
// the "Non-text" placeholder; longer text is cut to a short snippet.
func (l *MessageLog) Record(chatID int64, messageID int, text string) {
	snippet := snippetOf(text)

	l.mu.Lock()
	defer l.mu.Unlock()
	entries := append(l.chats[chatID], LoggedMessage{MessageID: messageID, Snippet: snippet})
	if len(entries) > maxLogged {
		entries = entries[len(entries)-maxLogged:]
	}
	l.chats[chatID] = entries
}

// Entries returns a copy of the chat's log in insertion order.
func (l *MessageLog) Entries(chatID int64) []LoggedMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.chats[chatID]
	out := make([]LoggedMessage, len(entries))
	copy(out, entries)
	return out
}

func snippetOf(text string) string {
	if text == "" {
		return "Non-text"
	}
	r := []rune(text)
	if len(r) > snippetRunes {
		r = r[:snippetRunes]
	}
	return string(r)
}
