package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/vsinha/acompreq/pkg/application/services/delivery"
	"github.com/vsinha/acompreq/pkg/infrastructure/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers digests through an SMTP relay
type SMTPNotifier struct {
	addr  string
	from  string
	auth  smtp.Auth
	send  sendFunc
	clock func() time.Time
}

var _ delivery.Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier uses PLAIN auth when a username is configured
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		addr:  cfg.Addr(),
		from:  cfg.From,
		auth:  auth,
		send:  smtp.SendMail,
		clock: time.Now,
	}
}

// Send transmits one message. Rejections with a 5xx reply are marked permanent.
func (n *SMTPNotifier) Send(ctx context.Context, msg delivery.Message) error {
	if err := ctx.Err(); err != nil {
		return delivery.Permanent(err)
	}
	if msg.To == "" {
		return delivery.Permanent(fmt.Errorf("no recipient for %s", msg.Administrator))
	}

	body, err := FormatMessage(n.from, msg, n.clock())
	if err != nil {
		return delivery.Permanent(err)
	}

	if err := n.send(n.addr, n.auth, n.from, []string{msg.To}, body); err != nil {
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) && protoErr.Code >= 500 {
			return delivery.Permanent(fmt.Errorf("smtp rejected %s: %w", msg.To, err))
		}
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}
