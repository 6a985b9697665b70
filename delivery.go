package folderstore

import (
	"context"
	"io"
	"net"
	"strings"
	"time"
)

// DeliveryAgent handles message delivery to storage.
// smtpd calls Deliver() after a message passes filtering.
type DeliveryAgent interface {
	// Deliver stores a message for the specified recipients.
	// envelope contains sender and recipient information.
	// message is the raw RFC 5322 message content.
	Deliver(ctx context.Context, envelope Envelope, message io.Reader) error
}

// Envelope contains the message envelope information from the SMTP transaction.
type Envelope struct {
	// From is the MAIL FROM address (reverse-path).
	From string

	// Recipients contains the RCPT TO addresses (forward-paths).
	Recipients []string

	// ReceivedTime is when the message was received by the server.
	ReceivedTime time.Time

	// ClientIP is the IP address of the connecting client.
	ClientIP net.IP

	// ClientHostname is the hostname provided in EHLO/HELO.
	ClientHostname string
}

// Recipient is a delivery address split into its mailbox address and its
// subaddress extension.
type Recipient struct {
	// Address is the recipient with any extension removed
	// (user+folder@example.com becomes user@example.com).
	Address string

	// Extension is the text after the first '+' in the local part, or "".
	// Stores may use it to select a folder within the mailbox.
	Extension string
}

// ParseRecipient splits a recipient address into its base address and
// subaddress extension.
func ParseRecipient(email string) Recipient {
	local, domain := email, ""
	if at := strings.LastIndex(email, "@"); at >= 0 {
		local, domain = email[:at], email[at:]
	}

	var ext string
	if plus := strings.Index(local, "+"); plus >= 0 {
		local, ext = local[:plus], local[plus+1:]
	}
	return Recipient{Address: local + domain, Extension: ext}
}

// Folder returns the folder the extension names, with "." separating
// folder components: "Work.Projects" becomes "Work/Projects". It returns
// "" when there is no extension.
func (r Recipient) Folder() string {
	return strings.ReplaceAll(r.Extension, ".", "/")
}
