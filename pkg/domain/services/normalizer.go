package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

var (
	integerPattern       = regexp.MustCompile(`^[+-]?\d+$`)
	zeroFractionPattern  = regexp.MustCompile(`^([+-]?\d+)\.0*$`)
	scientificPattern    = regexp.MustCompile(`^[+-]?\d+\.\d+[eE][+-]?\d+$`)
	requisitionDateForms = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"02/01/2006",
		"02/01/2006 15:04:05",
		"2006/01/02",
		"01-02-06",
	}
)

// nullMarkers are textual leftovers of missing values in spreadsheet exports
var nullMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"nat":  true,
	"none": true,
	"null": true,
	"<na>": true,
}

// Normalizer deduplicates raw requisition lines and normalizes their key fields
type Normalizer struct{}

// NewNormalizer creates a new record normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizationResult contains the outcome of one normalization pass
type NormalizationResult struct {
	Lines      []entities.RequisitionLine
	Rejected   []entities.RejectedRecord
	Duplicates int
}

// Normalize converts raw lines into normalized lines. The first occurrence of each
// (requisition, item, site) key is kept; rows without a site or requisition are rejected.
func (n *Normalizer) Normalize(raw []entities.RawRequisitionLine) NormalizationResult {
	result := NormalizationResult{
		Lines:    make([]entities.RequisitionLine, 0, len(raw)),
		Rejected: make([]entities.RejectedRecord, 0),
	}
	seen := make(map[entities.LineKey]struct{}, len(raw))

	for i, record := range raw {
		row := record.SourceRow
		if row == 0 {
			row = i + 1
		}

		date, _ := ParseRequisitionDate(record.RequisitionDate)
		line, err := entities.NewRequisitionLine(
			entities.SiteID(NormalizeIdentifier(record.SiteID)),
			entities.RequisitionID(NormalizeIdentifier(record.RequisitionID)),
			entities.ItemID(NormalizeIdentifier(record.ItemID)),
			date,
			entities.PurchaseOrderID(NormalizeIdentifier(record.PurchaseOrderID)),
		)
		if err != nil {
			var validationErr *entities.ValidationError
			if !errors.As(err, &validationErr) {
				validationErr = &entities.ValidationError{Field: "record", Reason: err.Error(), Err: err}
			}
			validationErr.Row = row
			result.Rejected = append(result.Rejected, entities.RejectedRecord{
				Row:    row,
				Line:   record,
				Reason: validationErr.Error(),
				Err:    validationErr,
			})
			continue
		}

		if _, duplicate := seen[line.Key()]; duplicate {
			result.Duplicates++
			continue
		}
		seen[line.Key()] = struct{}{}

		line.SiteDesc = cleanText(record.SiteDesc)
		line.SiteRegion = cleanText(record.SiteRegion)
		line.ItemDesc = cleanText(record.ItemDesc)
		line.ItemCategory = cleanText(record.ItemCategory)
		line.RequestedQty = ParseQuantity(record.RequestedQty)

		result.Lines = append(result.Lines, *line)
	}

	return result
}

// NormalizeIdentifier renders an identifier cell as canonical text. Integer-valued
// numbers in any representation ("12345.0", 12345.0, 12345) become "12345"; blanks and
// stringified nulls become ""; anything else passes through trimmed.
func NormalizeIdentifier(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return normalizeIdentifierText(v)
	case float64:
		return formatFloatIdentifier(v)
	case float32:
		return formatFloatIdentifier(float64(v))
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case decimal.Decimal:
		return v.String()
	default:
		return normalizeIdentifierText(fmt.Sprint(v))
	}
}

func normalizeIdentifierText(value string) string {
	value = strings.TrimSpace(value)
	if nullMarkers[strings.ToLower(value)] {
		return ""
	}
	if integerPattern.MatchString(value) {
		return value
	}
	if match := zeroFractionPattern.FindStringSubmatch(value); match != nil {
		return match[1]
	}
	// Spreadsheets display large numeric codes as "1.2345E+4"; "12E4" stays an opaque code
	if scientificPattern.MatchString(value) {
		if d, err := decimal.NewFromString(value); err == nil && d.IsInteger() {
			return d.String()
		}
	}
	return value
}

func formatFloatIdentifier(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ""
	}
	d := decimal.NewFromFloat(value)
	if d.IsInteger() {
		return d.String()
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NormalizeAdministratorName trims, strips diacritics and upper-cases a name.
// The stringified null "nan" maps to the null administrator.
func NormalizeAdministratorName(name string) entities.AdministratorName {
	trimmed := strings.Join(strings.Fields(name), " ")
	if nullMarkers[strings.ToLower(trimmed)] {
		return ""
	}

	stripDiacritics := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripDiacritics, trimmed)
	if err != nil {
		stripped = trimmed
	}
	return entities.AdministratorName(cases.Upper(language.BrazilianPortuguese).String(stripped))
}

// ParseRequisitionDate parses a calendar date. Unparsable values return false and a zero time.
func ParseRequisitionDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if nullMarkers[strings.ToLower(value)] {
		return time.Time{}, false
	}
	for _, layout := range requisitionDateForms {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseQuantity reads a requested quantity, accepting a decimal comma.
// Unreadable quantities count as zero since they are informational only.
func ParseQuantity(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if nullMarkers[strings.ToLower(value)] {
		return decimal.Zero
	}
	lastComma, lastDot := strings.LastIndex(value, ","), strings.LastIndex(value, ".")
	switch {
	case lastDot < 0 && strings.Count(value, ",") > 1:
		value = strings.ReplaceAll(value, ",", "")
	case lastComma > lastDot:
		// "1.234,5": dots group thousands, the comma is the decimal separator
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	case lastComma >= 0:
		// "1,234.5": commas group thousands
		value = strings.ReplaceAll(value, ",", "")
	}
	qty, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return qty
}

func cleanText(value string) string {
	value = strings.TrimSpace(value)
	if nullMarkers[strings.ToLower(value)] {
		return ""
	}
	return value
}
