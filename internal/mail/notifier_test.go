package mail

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestConfig_Recipient(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "prod delivers to purchaser",
			cfg:  Config{Sender: "org@example.com", Prod: true, TestRecipient: "test@example.com"},
			want: "buyer@example.com",
		},
		{
			name: "non-prod redirects to test recipient",
			cfg:  Config{Sender: "org@example.com", Prod: false, TestRecipient: "test@example.com"},
			want: "test@example.com",
		},
		{
			name: "non-prod without test recipient falls back to sender",
			cfg:  Config{Sender: "org@example.com", Prod: false},
			want: "org@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Recipient("buyer@example.com"); got != tt.want {
				t.Errorf("Recipient() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBody_TicketRange(t *testing.T) {
	b := body("Dupont Marie", 5, 10, true)

	if !strings.Contains(b, "Dupont Marie") {
		t.Error("body should address the customer by name")
	}
	if !strings.Contains(b, "10 à 14") {
		t.Errorf("body should state the range 10 à 14, got:\n%s", b)
	}
	if !strings.Contains(b, "Nombre de billets: 5") {
		t.Errorf("body should state the ticket count, got:\n%s", b)
	}
	if !strings.Contains(b, "production") {
		t.Error("prod body should be marked as production")
	}

	test := body("X", 1, 1, false)
	if !strings.Contains(test, "test") {
		t.Error("non-prod body should be marked as test")
	}
}

func TestComposeMessage(t *testing.T) {
	raw := composeMessage("from@example.com", "to@example.com", "Sujet", "corps du message")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("message is not web-safe base64: %v", err)
	}
	msg := string(decoded)

	for _, want := range []string{
		"From: from@example.com",
		"To: to@example.com",
		"Subject: Sujet",
		"charset=\"UTF-8\"",
		"corps du message",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("decoded message missing %q:\n%s", want, msg)
		}
	}

	headerEnd := strings.Index(msg, "\r\n\r\n")
	if headerEnd == -1 {
		t.Error("message has no header/body separator")
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := &LogNotifier{Config: Config{Sender: "org@example.com"}}
	if err := n.SendTickets(context.Background(), "buyer@example.com", "X", 2, 7); err != nil {
		t.Errorf("SendTickets() error = %v", err)
	}
}

func TestMemoryTokenStore(t *testing.T) {
	s := NewMemoryTokenStore()

	if _, err := s.Get(); err != ErrNoToken {
		t.Errorf("Get() on empty store = %v, want ErrNoToken", err)
	}

	tok := &oauth2.Token{AccessToken: "abc", RefreshToken: "def"}
	if err := s.Set(tok); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AccessToken != "abc" {
		t.Errorf("Get() AccessToken = %q", got.AccessToken)
	}

	s.Clear()
	if _, err := s.Get(); err != ErrNoToken {
		t.Errorf("Get() after Clear() = %v, want ErrNoToken", err)
	}
}

func TestNewGmailNotifier_RequiresSender(t *testing.T) {
	_, err := NewGmailNotifier([]byte(`{}`), Config{}, NewMemoryTokenStore())
	if err == nil {
		t.Fatal("NewGmailNotifier() should require a sender address")
	}
}
