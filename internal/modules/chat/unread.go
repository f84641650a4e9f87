package chat

import "churrasco/internal/domain"

// CountUnread counts messages the viewer has not read yet. The viewer's own
// messages never count.
func CountUnread(messages []domain.Message, viewerID int64) int {
	n := 0
	for _, m := range messages {
		if !m.IsRead && m.SenderID != viewerID {
			n++
		}
	}
	return n
}
