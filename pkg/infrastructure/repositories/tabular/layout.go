// Package tabular maps spreadsheet-style headers onto requisition and assignment fields.
// The CSV and XLSX loaders share it so both accept the same column names.
package tabular

import (
	"fmt"
	"strings"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

type Field int

const (
	SiteID Field = iota
	SiteDesc
	SiteRegion
	RequisitionID
	RequisitionDate
	ItemID
	ItemDesc
	ItemCategory
	PurchaseOrderID
	RequestedQty
	fieldCount
)

var fieldNames = [fieldCount]string{
	"site_id", "site_desc", "site_region", "requisition_id", "requisition_date",
	"item_id", "item_desc", "item_category", "purchase_order_id", "requested_qty",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// requisitionAliases accepts the upstream export names and their snake_case equivalents
var requisitionAliases = map[string]Field{
	"emprd":             SiteID,
	"site_id":           SiteID,
	"emprd_desc":        SiteDesc,
	"site_desc":         SiteDesc,
	"emprd_uf":          SiteRegion,
	"site_region":       SiteRegion,
	"req_cdg":           RequisitionID,
	"requisition_id":    RequisitionID,
	"req_data":          RequisitionDate,
	"requisition_date":  RequisitionDate,
	"insumo_cdg":        ItemID,
	"item_id":           ItemID,
	"insumo_desc":       ItemDesc,
	"item_desc":         ItemDesc,
	"insumo_grupo":      ItemCategory,
	"item_category":     ItemCategory,
	"of_cdg":            PurchaseOrderID,
	"purchase_order_id": PurchaseOrderID,
	"qtd":               RequestedQty,
	"requested_qty":     RequestedQty,
}

var requiredRequisitionFields = []Field{SiteID, RequisitionID, ItemID}

// Layout records the column position of each requisition field; -1 means absent
type Layout struct {
	columns [fieldCount]int
}

// ResolveRequisitionHeader builds a layout from a header row. Unknown columns are ignored;
// the site, requisition and item columns are required.
func ResolveRequisitionHeader(header []string) (Layout, error) {
	var layout Layout
	for i := range layout.columns {
		layout.columns[i] = -1
	}

	for i, name := range header {
		field, ok := requisitionAliases[canonical(name)]
		if !ok || layout.columns[field] >= 0 {
			continue
		}
		layout.columns[field] = i
	}

	var missing []string
	for _, field := range requiredRequisitionFields {
		if !layout.Has(field) {
			missing = append(missing, field.String())
		}
	}
	if len(missing) > 0 {
		return Layout{}, fmt.Errorf("header is missing required columns: %s", strings.Join(missing, ", "))
	}
	return layout, nil
}

// Has reports whether the header carried the field
func (l Layout) Has(field Field) bool {
	return l.columns[field] >= 0
}

// Cell returns the value of field in record, or "" when the column is absent or short
func (l Layout) Cell(record []string, field Field) string {
	if !l.Has(field) {
		return ""
	}
	col := l.columns[field]
	if col >= len(record) {
		return ""
	}
	return record[col]
}

// Line converts one data record into a raw requisition line. row is the 1-based source row.
func (l Layout) Line(row int, record []string) entities.RawRequisitionLine {
	line := entities.RawRequisitionLine{
		SourceRow:       row,
		SiteID:          l.Cell(record, SiteID),
		SiteDesc:        l.Cell(record, SiteDesc),
		SiteRegion:      l.Cell(record, SiteRegion),
		RequisitionID:   l.Cell(record, RequisitionID),
		RequisitionDate: l.Cell(record, RequisitionDate),
		ItemID:          l.Cell(record, ItemID),
		ItemDesc:        l.Cell(record, ItemDesc),
		ItemCategory:    l.Cell(record, ItemCategory),
		RequestedQty:    l.Cell(record, RequestedQty),
	}
	if order := l.Cell(record, PurchaseOrderID); order != "" {
		line.PurchaseOrderID = order
	}
	return line
}

var assignmentSiteAliases = map[string]bool{"emprd": true, "site_id": true}
var assignmentAdminAliases = map[string]bool{
	"adm":                true,
	"administrador":      true,
	"administrator":      true,
	"administrator_name": true,
}

// AssignmentLayout locates the site and administrator columns of an assignment table
type AssignmentLayout struct {
	site          int
	administrator int
}

func ResolveAssignmentHeader(header []string) (AssignmentLayout, error) {
	layout := AssignmentLayout{site: -1, administrator: -1}
	for i, name := range header {
		key := canonical(name)
		switch {
		case assignmentSiteAliases[key] && layout.site < 0:
			layout.site = i
		case assignmentAdminAliases[key] && layout.administrator < 0:
			layout.administrator = i
		}
	}
	if layout.site < 0 || layout.administrator < 0 {
		return AssignmentLayout{}, fmt.Errorf("assignment header must contain site_id and administrator columns, got %v", header)
	}
	return layout, nil
}

// Assignment converts a record; ok is false for rows without a site
func (l AssignmentLayout) Assignment(record []string) (entities.AdministratorAssignment, bool) {
	site := cell(record, l.site)
	if strings.TrimSpace(site) == "" {
		return entities.AdministratorAssignment{}, false
	}
	return entities.AdministratorAssignment{
		SiteID:        entities.SiteID(site),
		Administrator: entities.AdministratorName(cell(record, l.administrator)),
	}, true
}

// IsBlank reports whether every cell of record is empty
func IsBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

func canonical(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}
