package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/infrastructure/events"
)

// Status is the delivery outcome for one administrator
type Status string

const (
	Delivered Status = "delivered"
	Failed    Status = "failed"
	Skipped   Status = "skipped"
)

const skippedNoAddress = "address missing"

// Config tunes the dispatcher
type Config struct {
	// Concurrency bounds simultaneous sends; values below 1 mean one at a time
	Concurrency int
	// RatePerSecond caps send attempts across all recipients; 0 disables throttling
	RatePerSecond float64
	Retry         RetryConfig
	// RunID tags delivery events with the pass that composed the digests
	RunID string
}

func DefaultConfig() Config {
	return Config{
		Concurrency:   4,
		RatePerSecond: 2,
		Retry:         DefaultRetryConfig(),
	}
}

// Outcome records what happened to one digest
type Outcome struct {
	Administrator entities.AdministratorName `json:"administrator"`
	Address       string                     `json:"address,omitempty"`
	Status        Status                     `json:"status"`
	Attempts      int                        `json:"attempts"`
	Error         string                     `json:"error,omitempty"`
}

// DeliveryReport lists outcomes ordered by administrator name
type DeliveryReport struct {
	Outcomes  []Outcome `json:"outcomes"`
	Delivered int       `json:"delivered"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
}

// Dispatcher sends digests, one independent task per administrator
type Dispatcher struct {
	notifier   Notifier
	config     Config
	limiter    *rate.Limiter
	eventStore events.EventStore
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher. eventStore and logger may be nil.
func NewDispatcher(notifier Notifier, config Config, eventStore events.EventStore, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}

	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}

	return &Dispatcher{
		notifier:   notifier,
		config:     config,
		limiter:    rate.NewLimiter(limit, 1),
		eventStore: eventStore,
		logger:     logger,
	}
}

// Dispatch delivers every deliverable digest. Digests flagged AddressMissing are skipped.
// A failure for one administrator never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, digests map[entities.AdministratorName]entities.Digest) DeliveryReport {
	names := make([]entities.AdministratorName, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	outcomes := make([]Outcome, len(names))

	// Tasks never return an error, so one failure does not cancel the group
	var g errgroup.Group
	g.SetLimit(d.config.Concurrency)

	for i, name := range names {
		digest := digests[name]
		if !digest.Deliverable() {
			outcomes[i] = Outcome{Administrator: name, Status: Skipped, Error: skippedNoAddress}
			d.publish(events.NewDigestSkippedEvent(d.config.RunID, name, skippedNoAddress))
			continue
		}

		g.Go(func() error {
			outcomes[i] = d.deliver(ctx, digest)
			return nil
		})
	}
	_ = g.Wait()

	report := DeliveryReport{Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case Delivered:
			report.Delivered++
		case Failed:
			report.Failed++
		case Skipped:
			report.Skipped++
		}
	}

	d.logger.Info("digest delivery finished",
		"delivered", report.Delivered,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report
}

func (d *Dispatcher) deliver(ctx context.Context, digest entities.Digest) Outcome {
	msg := NewMessage(digest)
	outcome := Outcome{Administrator: digest.Administrator, Address: digest.Address}

	attempts, err := retry(ctx, d.config.Retry, func(attempt int) error {
		if err := d.limiter.Wait(ctx); err != nil {
			return Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		if err := d.notifier.Send(ctx, msg); err != nil {
			d.logger.Warn("digest delivery attempt failed",
				"administrator", digest.Administrator,
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		return nil
	})
	outcome.Attempts = attempts

	if err != nil {
		outcome.Status = Failed
		outcome.Error = err.Error()
		d.publish(events.NewDigestDeliveryFailedEvent(d.config.RunID, digest.Administrator, attempts, err))
		return outcome
	}

	outcome.Status = Delivered
	d.publish(events.NewDigestDeliveredEvent(d.config.RunID, digest, attempts))
	return outcome
}

func (d *Dispatcher) publish(event events.Event) {
	if d.eventStore == nil {
		return
	}
	if err := d.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		d.logger.Warn("failed to publish event", "event", event.Type(), "error", err)
	}
}
