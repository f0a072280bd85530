package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vsinha/acompreq/pkg/application/services/delivery"
)

// WriterNotifier prints messages instead of sending them, for dry runs
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ delivery.Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Send(ctx context.Context, msg delivery.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.w, "%s\nPara: %s\nAssunto: %s\n\n%s%s\n",
		strings.Repeat("=", 60), msg.To, msg.Subject, msg.Body, strings.Repeat("=", 60))
	return err
}
