package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	NoPurchaseOrderText  = "nenhuma OF gerada ainda"
	AllItemsCoveredText  = "todos os insumos atendidos"
	digestTitle          = "Acompanhamento de Requisições"
	digestEntryIndent    = "  "
	digestPendingBullets = "    - "
)

// ISOWeek is an ISO 8601 week number with its owning year
type ISOWeek struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// ISOWeekOf returns the ISO week a calendar date belongs to
func ISOWeekOf(t time.Time) ISOWeek {
	year, week := t.ISOWeek()
	return ISOWeek{Year: year, Week: week}
}

func (w ISOWeek) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// DigestEntry lists what happened to one requisition of an administrator
type DigestEntry struct {
	RequisitionID   RequisitionID     `json:"requisition_id"`
	SiteID          SiteID            `json:"site_id"`
	SiteDesc        string            `json:"site_desc,omitempty"`
	RequisitionDate time.Time         `json:"requisition_date"`
	PurchaseOrders  []PurchaseOrderID `json:"purchase_orders"`
	PendingItems    []string          `json:"pending_items"`
}

// Digest is the notification summary for one administrator
type Digest struct {
	Administrator  AdministratorName `json:"administrator"`
	Address        string            `json:"address,omitempty"`
	AddressMissing bool              `json:"address_missing"`
	AsOf           time.Time         `json:"as_of"`
	PreviousWeek   ISOWeek           `json:"previous_week"`
	CurrentWeek    ISOWeek           `json:"current_week"`
	Entries        []DigestEntry     `json:"entries"`
}

// Deliverable reports whether the digest has somewhere to go
func (d Digest) Deliverable() bool {
	return !d.AddressMissing && d.Address != "" && len(d.Entries) > 0
}

// PendingRequisitions counts entries that still have items without a purchase order
func (d Digest) PendingRequisitions() int {
	count := 0
	for _, entry := range d.Entries {
		if len(entry.PendingItems) > 0 {
			count++
		}
	}
	return count
}

// Subject returns the notification subject line
func (d Digest) Subject() string {
	return fmt.Sprintf("%s - %s - %s", digestTitle, d.Administrator, d.CurrentWeek)
}

// Render returns the plain-text body. Identical digests render byte-identical text.
func (d Digest) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s - %s\n", digestTitle, d.Administrator)
	fmt.Fprintf(&b, "Semanas %s e %s (referência %s)\n", d.PreviousWeek, d.CurrentWeek, d.AsOf.Format(DateLayout))

	for _, entry := range d.Entries {
		b.WriteString("\n")
		site := string(entry.SiteID)
		if entry.SiteDesc != "" {
			site = fmt.Sprintf("%s (%s)", entry.SiteID, entry.SiteDesc)
		}
		fmt.Fprintf(&b, "Requisição %s - Obra %s", entry.RequisitionID, site)
		if !entry.RequisitionDate.IsZero() {
			fmt.Fprintf(&b, " - %s", entry.RequisitionDate.Format(DateLayout))
		}
		b.WriteString("\n")

		if len(entry.PurchaseOrders) == 0 {
			fmt.Fprintf(&b, "%sOFs geradas: %s\n", digestEntryIndent, NoPurchaseOrderText)
		} else {
			orders := make([]string, len(entry.PurchaseOrders))
			for i, order := range entry.PurchaseOrders {
				orders[i] = string(order)
			}
			fmt.Fprintf(&b, "%sOFs geradas: %s\n", digestEntryIndent, strings.Join(orders, ", "))
		}

		if len(entry.PendingItems) == 0 {
			fmt.Fprintf(&b, "%sInsumos pendentes: %s\n", digestEntryIndent, AllItemsCoveredText)
		} else {
			fmt.Fprintf(&b, "%sInsumos pendentes:\n", digestEntryIndent)
			for _, item := range entry.PendingItems {
				fmt.Fprintf(&b, "%s%s\n", digestPendingBullets, item)
			}
		}
	}

	fmt.Fprintf(&b, "\nTotal: %d requisições, %d com pendências.\n", len(d.Entries), d.PendingRequisitions())
	return b.String()
}

// Fingerprint identifies the rendered body, so reprocessing the same data can be recognized
func (d Digest) Fingerprint() string {
	sum := sha256.Sum256([]byte(d.Subject() + "\n" + d.Render()))
	return hex.EncodeToString(sum[:])
}

type digestFields Digest

// MarshalJSON adds the rendered notification to the digest fields
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		digestFields
		Subject     string `json:"subject"`
		Body        string `json:"body"`
		Fingerprint string `json:"fingerprint"`
	}{
		digestFields: digestFields(d),
		Subject:      d.Subject(),
		Body:         d.Render(),
		Fingerprint:  d.Fingerprint(),
	})
}
