package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent map[int64][]string
	err  error
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[int64][]string)
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return f.err
}

func TestNotifierSendsSelectedTypes(t *testing.T) {
	sender := &fakeSender{}
	n, err := NewNotifier(sender, "-100123")
	require.NoError(t, err)

	eventID := uuid.New()
	ctx := context.Background()
	require.NoError(t, n.Publish(ctx, entity.NewNotification(entity.NotificationEventFull, nil, &eventID,
		map[string]interface{}{"event_name": "Go <Day>", "max_capacity": 2})))
	require.NoError(t, n.Publish(ctx, entity.NewNotification(entity.NotificationRegistrationCreated, nil, &eventID, nil)))
	n.Wait()

	msgs := sender.sent[-100123]
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Go &lt;Day&gt;")
	assert.Contains(t, msgs[0], eventID.String())
}

func TestNotifierIgnoresSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("bot blocked")}
	n, err := NewNotifier(sender, "42")
	require.NoError(t, err)

	err = n.Publish(context.Background(), entity.NewNotification(entity.NotificationRegistrationCancelled, nil, nil,
		map[string]interface{}{"forced": true}))
	assert.NoError(t, err)
	n.Wait()
	assert.Len(t, sender.sent[42], 1)
}

func TestFormatCancellation(t *testing.T) {
	studentID := uuid.New()
	text, ok := FormatNotification(entity.NewNotification(entity.NotificationRegistrationCancelled, &studentID, nil,
		map[string]interface{}{"forced": true}))
	require.True(t, ok)
	assert.Contains(t, text, studentID.String())
	assert.Contains(t, text, "принудительно")

	_, ok = FormatNotification(entity.NewNotification(entity.NotificationFeedbackSubmitted, nil, nil, nil))
	assert.False(t, ok)
}

func TestNewNotifierRejectsBadChatID(t *testing.T) {
	_, err := NewNotifier(&fakeSender{}, "@channel")
	assert.Error(t, err)
}
