// Package chat holds the append-only message log for a lobby.
package chat

import (
	"unicode/utf8"

	"github.com/worldsim/client/pkg/protocol"
)

// MaxContentLength bounds outbound chat content. Inbound messages are
// trusted as-is; the authority applies its own bound.
const MaxContentLength = 500

// Log is ordered by arrival, not by message timestamp — clock skew between
// players is the authority's problem, ours is stable display order. The
// sender's own messages only appear once they echo back off the channel.
type Log struct {
	msgs   []protocol.ChatMessage
	unread int
}

func (l *Log) Append(m protocol.ChatMessage) {
	l.msgs = append(l.msgs, m)
	l.unread++
}

func (l *Log) MarkRead() { l.unread = 0 }

func (l *Log) Unread() int { return l.unread }

func (l *Log) Len() int { return len(l.msgs) }

// Messages returns a copy of the log in arrival order.
func (l *Log) Messages() []protocol.ChatMessage {
	out := make([]protocol.ChatMessage, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Truncate clips content to MaxContentLength before transmission.
func Truncate(content string) string {
	if len(content) <= MaxContentLength {
		return content
	}
	cut := content[:MaxContentLength]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
