package telegram

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"sync"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Notifier sends admin notices for full events and cancellations.
// Messages go out in the background so a slow Bot API never delays a request.
type Notifier struct {
	sender Sender
	chatID int64
	wg     sync.WaitGroup
}

func NewNotifier(sender Sender, chatID string) (*Notifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	return &Notifier{sender: sender, chatID: id}, nil
}

func (n *Notifier) Publish(_ context.Context, note *entity.Notification) error {
	text, ok := FormatNotification(note)
	if !ok {
		return nil
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.sender.SendMessage(n.chatID, text); err != nil {
			logrus.WithError(err).WithField("type", note.Type).Warn("Failed to send telegram notice")
		}
	}()
	return nil
}

// Wait blocks until every queued message has been sent.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// FormatNotification renders the notices the bot cares about; other types are skipped.
func FormatNotification(note *entity.Notification) (string, bool) {
	switch note.Type {
	case entity.NotificationEventFull:
		name, _ := note.Data["event_name"].(string)
		return fmt.Sprintf("🎟 <b>Мероприятие заполнено</b>\n%s\nмест: %v\nid: <code>%s</code>",
			html.EscapeString(name), note.Data["max_capacity"], idOrDash(note.EventID)), true

	case entity.NotificationRegistrationCancelled:
		text := fmt.Sprintf("❌ <b>Регистрация отменена</b>\nстудент: <code>%s</code>\nмероприятие: <code>%s</code>",
			idOrDash(note.StudentID), idOrDash(note.EventID))
		if forced, _ := note.Data["forced"].(bool); forced {
			text += "\n(принудительно, посещаемость сохранена)"
		}
		return text, true
	}
	return "", false
}

func idOrDash(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}
