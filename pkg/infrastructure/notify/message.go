package notify

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"time"

	"github.com/vsinha/acompreq/pkg/application/services/delivery"
)

// FormatMessage renders msg as an RFC 5322 message with a quoted-printable UTF-8 body
func FormatMessage(from string, msg delivery.Message, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	if msg.Fingerprint != "" {
		fmt.Fprintf(&buf, "X-Digest-Fingerprint: %s\r\n", msg.Fingerprint)
	}
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write(bytes.ReplaceAll([]byte(msg.Body), []byte("\n"), []byte("\r\n"))); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	return buf.Bytes(), nil
}
