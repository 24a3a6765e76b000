package shared

import "context"

// ServerMessage is a user-facing notice accumulated while serving one request.
type ServerMessage struct {
	Message string `json:"message"`
}

// MessageLog collects server messages for the duration of a single request.
// Loaders push a message when they reject access; callers that substitute a
// fallback pop the message again so the client does not see it twice.
type MessageLog struct {
	entries []ServerMessage
}

// Add appends a message to the log.
func (l *MessageLog) Add(message string) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, ServerMessage{Message: message})
}

// Pop removes and returns the most recent message, nil when empty.
func (l *MessageLog) Pop() *ServerMessage {
	if l == nil || len(l.entries) == 0 {
		return nil
	}
	msg := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return &msg
}

// Len reports how many messages are pending.
func (l *MessageLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns the pending messages in insertion order.
func (l *MessageLog) Entries() []ServerMessage {
	if l == nil {
		return nil
	}
	out := make([]ServerMessage, len(l.entries))
	copy(out, l.entries)
	return out
}

type messageLogContextKey struct{}

// ContextWithMessageLog stores the request message log in context.
func ContextWithMessageLog(ctx context.Context, log *MessageLog) context.Context {
	return context.WithValue(ctx, messageLogContextKey{}, log)
}

// MessageLogFromContext extracts the message log, nil when absent.
func MessageLogFromContext(ctx context.Context) *MessageLog {
	log, _ := ctx.Value(messageLogContextKey{}).(*MessageLog)
	return log
}
