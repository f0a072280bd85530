package delivery

import (
	"context"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// Message is one outbound notification
type Message struct {
	Administrator entities.AdministratorName
	To            string
	Subject       string
	Body          string
	Fingerprint   string
}

// NewMessage builds the message for a deliverable digest
func NewMessage(digest entities.Digest) Message {
	return Message{
		Administrator: digest.Administrator,
		To:            digest.Address,
		Subject:       digest.Subject(),
		Body:          digest.Render(),
		Fingerprint:   digest.Fingerprint(),
	}
}

// Notifier sends a message to its recipient. Implementations must be safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
