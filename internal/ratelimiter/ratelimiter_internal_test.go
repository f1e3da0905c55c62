package ratelimiter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type stubSender struct {
	mu       sync.Mutex
	sentAt   map[int64][]time.Time
	requests int
	err      error
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sentAt == nil {
		s.sentAt = make(map[int64][]time.Time)
	}

	chatID := getChatID(c)
	s.sentAt[chatID] = append(s.sentAt[chatID], time.Now())

	return tgbotapi.Message{MessageID: len(s.sentAt[chatID])}, s.err
}

func (s *stubSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestLimiter(t *testing.T, sender Sender) *RateLimiter {
	t.Helper()

	rl := New(sender, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rl.privateRate = 50 * time.Millisecond
	rl.groupRate = 100 * time.Millisecond
	t.Cleanup(rl.Stop)

	return rl
}

func TestGetDelay(t *testing.T) {
	rl := &RateLimiter{privateRate: privateChatRate, groupRate: groupChatRate}
	now := time.Now()

	tests := []struct {
		name     string
		chatID   int64
		lastSent time.Time
		wantZero bool
	}{
		{"Private chat - no delay needed", 123456789, now.Add(-2 * time.Second), true},
		{"Private chat - delay needed", 123456789, now.Add(-500 * time.Millisecond), false},
		{"Group chat - no delay needed", -123456789, now.Add(-4 * time.Second), true},
		{"Group chat - delay needed", -123456789, now.Add(-1 * time.Second), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := rl.getDelay(test.chatID, test.lastSent)

			if test.wantZero && got > 0 {
				t.Errorf("Expected zero delay, got %v", got)
			}

			if !test.wantZero && got <= 0 {
				t.Errorf("Expected positive delay, got %v", got)
			}
		})
	}
}

func TestGetChatID(t *testing.T) {
	tests := []struct {
		name    string
		message tgbotapi.Chattable
		want    int64
	}{
		{"MessageConfig", tgbotapi.NewMessage(12345, "test"), 12345},
		{"ChatActionConfig", tgbotapi.NewChatAction(67890, tgbotapi.ChatTyping), 67890},
		{"CallbackConfig", tgbotapi.NewCallback("id", "text"), 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := getChatID(test.message); got != test.want {
				t.Errorf("Expected %v chatID, got %v", test.want, got)
			}
		})
	}
}

func TestSendSpacesMessagesToSameChat(t *testing.T) {
	sender := &stubSender{}
	rl := newTestLimiter(t, sender)
	ctx := context.Background()

	for range 3 {
		if _, err := rl.Send(ctx, tgbotapi.NewMessage(42, "part")); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()

	sent := sender.sentAt[42]
	if len(sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sent))
	}

	for i := 1; i < len(sent); i++ {
		if gap := sent[i].Sub(sent[i-1]); gap < 40*time.Millisecond {
			t.Fatalf("gap %d = %v, want at least the private rate", i, gap)
		}
	}
}

func TestSendReturnsSenderError(t *testing.T) {
	wantErr := errors.New("bad request")
	rl := newTestLimiter(t, &stubSender{err: wantErr})

	if _, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "x")); !errors.Is(err, wantErr) {
		t.Fatalf("Send() error = %v, want %v", err, wantErr)
	}
}

func TestSendAfterStop(t *testing.T) {
	rl := newTestLimiter(t, &stubSender{})
	rl.Stop()

	if _, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Send() error = %v, want context.Canceled", err)
	}
}

func TestRequestBypassesQueue(t *testing.T) {
	sender := &stubSender{}
	rl := newTestLimiter(t, sender)

	if _, err := rl.Request(tgbotapi.NewChatAction(1, tgbotapi.ChatTyping)); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if sender.requests != 1 {
		t.Fatalf("requests = %d, want 1", sender.requests)
	}
}
