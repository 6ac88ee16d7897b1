package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier sends ticket emails through the Gmail API using OAuth
// credentials. Token refresh is handled by the oauth2 token source; refreshed
// tokens are written back to the TokenStore so the next send reuses them.
type GmailNotifier struct {
	cfg    Config
	oauth  *oauth2.Config
	tokens TokenStore
}

// NewGmailNotifier parses the OAuth client secrets JSON (the Google Cloud
// Console download) and wires the token store. The gmail.send scope is the
// only one requested.
func NewGmailNotifier(credentialsJSON []byte, cfg Config, tokens TokenStore) (*GmailNotifier, error) {
	if cfg.Sender == "" {
		return nil, fmt.Errorf("gmail notifier: sender address is required")
	}
	oauthCfg, err := google.ConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	return &GmailNotifier{cfg: cfg, oauth: oauthCfg, tokens: tokens}, nil
}

// AuthURL returns the URL the operator visits to grant the gmail.send scope.
func (n *GmailNotifier) AuthURL(state string) string {
	return n.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it.
func (n *GmailNotifier) Exchange(ctx context.Context, code string) error {
	tok, err := n.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	return n.tokens.Set(tok)
}

// Authorized reports whether a usable token is stored.
func (n *GmailNotifier) Authorized() bool {
	tok, err := n.tokens.Get()
	return err == nil && (tok.Valid() || tok.RefreshToken != "")
}

// SendTickets composes and sends the ticket range email. Outside production
// the recipient is redirected per Config.Recipient so no purchaser gets test
// mail. Failures are returned to the caller; the order must stay unassigned
// when delivery fails.
func (n *GmailNotifier) SendTickets(ctx context.Context, recipientEmail, customerName string, numTickets, startID int) error {
	tok, err := n.tokens.Get()
	if err != nil {
		return err
	}

	src := n.oauth.TokenSource(ctx, tok)
	svc, err := gmail.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return fmt.Errorf("create gmail service: %w", err)
	}

	to := n.cfg.Recipient(recipientEmail)
	raw := composeMessage(n.cfg.Sender, to, subject, body(customerName, numTickets, startID, n.cfg.Prod))

	if _, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Do(); err != nil {
		return fmt.Errorf("send ticket email to %s: %w", to, err)
	}

	// Persist a refreshed token for the next send.
	if cur, err := src.Token(); err == nil && cur.AccessToken != tok.AccessToken {
		_ = n.tokens.Set(cur)
	}
	return nil
}

// composeMessage builds an RFC 2822 message and encodes it the way the Gmail
// API expects (web-safe base64, no padding requirements beyond URLEncoding).
func composeMessage(from, to, subject, body string) string {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body)
	return base64.URLEncoding.EncodeToString([]byte(msg))
}
