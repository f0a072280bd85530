package events

import (
	"context"
	"log/slog"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

const (
	RecordRejectedEvent = "record.rejected"

	DigestComposedEvent       = "digest.composed"
	DigestAddressMissingEvent = "digest.address_missing"
	DigestDeliveredEvent      = "digest.delivered"
	DigestDeliveryFailedEvent = "digest.delivery_failed"
	DigestSkippedEvent        = "digest.skipped"
)

// AllEventTypes lists every event type emitted by the tracker
var AllEventTypes = []string{
	RecordRejectedEvent,
	DigestComposedEvent,
	DigestAddressMissingEvent,
	DigestDeliveredEvent,
	DigestDeliveryFailedEvent,
	DigestSkippedEvent,
}

type RecordRejected struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type DigestComposed struct {
	Administrator entities.AdministratorName `json:"administrator"`
	Requisitions  int                        `json:"requisitions"`
	Pending       int                        `json:"pending"`
	Fingerprint   string                     `json:"fingerprint"`
}

type DigestAddressMissing struct {
	Administrator entities.AdministratorName `json:"administrator"`
}

type DigestDelivered struct {
	Administrator entities.AdministratorName `json:"administrator"`
	Address       string                     `json:"address"`
	Attempts      int                        `json:"attempts"`
	Fingerprint   string                     `json:"fingerprint"`
}

type DigestDeliveryFailed struct {
	Administrator entities.AdministratorName `json:"administrator"`
	Attempts      int                        `json:"attempts"`
	Error         string                     `json:"error"`
}

type DigestSkipped struct {
	Administrator entities.AdministratorName `json:"administrator"`
	Reason        string                     `json:"reason"`
}

func NewRecordRejectedEvent(runID string, rejected entities.RejectedRecord) Event {
	return newRunEvent(RecordRejectedEvent, runID, "", RecordRejected{Row: rejected.Row, Reason: rejected.Reason})
}

func NewDigestComposedEvent(runID string, digest entities.Digest) Event {
	return newRunEvent(DigestComposedEvent, runID, digest.Administrator, DigestComposed{
		Administrator: digest.Administrator,
		Requisitions:  len(digest.Entries),
		Pending:       digest.PendingRequisitions(),
		Fingerprint:   digest.Fingerprint(),
	})
}

func NewDigestAddressMissingEvent(runID string, administrator entities.AdministratorName) Event {
	return newRunEvent(DigestAddressMissingEvent, runID, administrator, DigestAddressMissing{Administrator: administrator})
}

func NewDigestDeliveredEvent(runID string, digest entities.Digest, attempts int) Event {
	return newDeliveryEvent(DigestDeliveredEvent, runID, digest.Administrator, DigestDelivered{
		Administrator: digest.Administrator,
		Address:       digest.Address,
		Attempts:      attempts,
		Fingerprint:   digest.Fingerprint(),
	})
}

func NewDigestDeliveryFailedEvent(runID string, administrator entities.AdministratorName, attempts int, err error) Event {
	return newDeliveryEvent(DigestDeliveryFailedEvent, runID, administrator, DigestDeliveryFailed{
		Administrator: administrator,
		Attempts:      attempts,
		Error:         err.Error(),
	})
}

func NewDigestSkippedEvent(runID string, administrator entities.AdministratorName, reason string) Event {
	return newDeliveryEvent(DigestSkippedEvent, runID, administrator, DigestSkipped{Administrator: administrator, Reason: reason})
}

// LogHandler forwards tracking events to a structured logger
type LogHandler struct {
	logger *slog.Logger
}

func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger}
}

func (h *LogHandler) CanHandle(eventType string) bool {
	return true
}

func (h *LogHandler) Handle(event Event) error {
	level := slog.LevelInfo
	switch event.Type() {
	case RecordRejectedEvent, DigestAddressMissingEvent, DigestSkippedEvent:
		level = slog.LevelWarn
	case DigestDeliveryFailedEvent:
		level = slog.LevelError
	}
	attrs := []any{"run_id", event.RunID(), "stream", event.StreamID(), "version", event.Version()}
	if !event.Administrator().IsNull() {
		attrs = append(attrs, "administrator", event.Administrator())
	}
	h.logger.Log(context.Background(), level, event.Type(), append(attrs, "data", event.Data())...)
	return nil
}
