// Package mail delivers ticket-range notifications to purchasers. The core
// pipeline only depends on the Notifier interface; Gmail delivery and the
// development log sink are interchangeable implementations.
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Notifier sends a customer their assigned ticket range. Implementations are
// synchronous: a nil return means the message was handed to the transport.
type Notifier interface {
	SendTickets(ctx context.Context, recipientEmail, customerName string, numTickets, startID int) error
}

// Config holds delivery settings shared by notifier implementations.
type Config struct {
	// Sender is the address messages are sent from.
	Sender string

	// Prod enables delivery to the real purchaser address. When false, all
	// mail is redirected to TestRecipient so staff can rehearse sends.
	Prod bool

	// TestRecipient receives redirected mail outside production. Falls back
	// to Sender when empty.
	TestRecipient string
}

// Recipient resolves the actual delivery address for a purchaser email.
func (c Config) Recipient(purchaserEmail string) string {
	if c.Prod {
		return purchaserEmail
	}
	if c.TestRecipient != "" {
		return c.TestRecipient
	}
	return c.Sender
}

// Subject and body text mirror the storefront's bilingual customer base.
const subject = "Vos billets de tombola / Your raffle tickets"

func body(name string, numTickets, startID int, prod bool) string {
	endID := startID + numTickets - 1
	mode := "de test (redirigé)"
	if prod {
		mode = "de production"
	}
	return fmt.Sprintf(
		"Bonjour %s,\n\n"+
			"Merci pour votre achat. Voici vos numéros de billets: %d à %d.\n"+
			"Nombre de billets: %d.\n\n"+
			"Ceci est un email %s.",
		name, startID, endID, numTickets, mode)
}

// LogNotifier writes the message to the structured log instead of sending it.
// Used in development when no Gmail credentials are configured.
type LogNotifier struct {
	Config Config
}

func (n *LogNotifier) SendTickets(ctx context.Context, recipientEmail, customerName string, numTickets, startID int) error {
	slog.InfoContext(ctx, "ticket email (log only, not delivered)",
		"to", n.Config.Recipient(recipientEmail),
		"subject", subject,
		"name", customerName,
		"num_tickets", numTickets,
		"start_id", startID,
		"end_id", startID+numTickets-1,
	)
	return nil
}
