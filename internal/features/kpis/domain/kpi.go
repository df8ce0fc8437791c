package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status classifies a KPI value against its target.
type Status string

const (
	StatusComplies     Status = "complies"
	StatusAlert        Status = "alert"
	StatusNotCompliant Status = "not_compliant"
)

// ErrNotFound is returned when a KPI or KPI value does not exist.
var ErrNotFound = errors.New("kpi: not found")

// ErrNotNumeric is returned when a raw value has no parseable number.
var ErrNotNumeric = errors.New("kpi: value is not numeric")

// Kpi is a tracked indicator belonging to a company area.
type Kpi struct {
	ID             int       `db:"id" json:"id"`
	CompanyID      int       `db:"company_id" json:"companyId"`
	AreaID         int       `db:"area_id" json:"areaId"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	Target         string    `db:"target" json:"target"`
	AnnualGoal     string    `db:"annual_goal" json:"annualGoal"`
	Unit           string    `db:"unit" json:"unit"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Responsible    string    `db:"responsible" json:"responsible"`
	InvertedMetric bool      `db:"inverted_metric" json:"invertedMetric"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// KpiValue is one reported measurement for a KPI.
type KpiValue struct {
	ID                   int       `db:"id" json:"id"`
	KpiID                int       `db:"kpi_id" json:"kpiId"`
	CompanyID            int       `db:"company_id" json:"companyId"`
	UpdatedBy            int       `db:"updated_by" json:"updatedBy"`
	Value                string    `db:"value" json:"value"`
	Period               string    `db:"period" json:"period"`
	Month                int       `db:"month" json:"month"`
	Year                 int       `db:"year" json:"year"`
	Date                 time.Time `db:"date" json:"date"`
	CompliancePercentage string    `db:"compliance_percentage" json:"compliancePercentage"`
	Status               Status    `db:"status" json:"status"`
	Comments             string    `db:"comments" json:"comments"`
}

// ParseLocalizedNumber extracts a float from a human formatted value such
// as "50,000 KG" or "$1,234.56". Everything except digits, sign and the
// decimal point is discarded before parsing.
func ParseLocalizedNumber(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	return f, nil
}

// Classify compares a numeric value to its target. For inverted metrics a
// lower value is better. Exactly 90% of target (110% when inverted) still
// counts as alert.
func Classify(value, target float64, inverted bool) Status {
	if target == 0 {
		if value == 0 {
			return StatusComplies
		}
		return StatusAlert
	}

	if inverted {
		switch {
		case value <= target:
			return StatusComplies
		case value <= target*1.1:
			return StatusAlert
		default:
			return StatusNotCompliant
		}
	}

	switch {
	case value >= target:
		return StatusComplies
	case value >= target*0.9:
		return StatusAlert
	default:
		return StatusNotCompliant
	}
}

// ClassifyStrings parses both sides and classifies. A value or target that
// does not parse yields not_compliant.
func ClassifyStrings(value, target string, inverted bool) Status {
	v, errV := ParseLocalizedNumber(value)
	tg, errT := ParseLocalizedNumber(target)
	if errV != nil || errT != nil {
		return StatusNotCompliant
	}
	return Classify(v, tg, inverted)
}

// CompliancePercent returns the compliance percentage formatted with one
// decimal, e.g. "95.5%". The ratio is inverted for lower-is-better metrics
// and never capped at 100.
func CompliancePercent(value, target string, inverted bool) string {
	v, errV := ParseLocalizedNumber(value)
	tg, errT := ParseLocalizedNumber(target)
	if errV != nil || errT != nil {
		return "0.0%"
	}

	var pct float64
	if inverted {
		if v == 0 {
			if tg > 0 {
				pct = 200
			}
		} else {
			pct = tg / v * 100
		}
	} else {
		if tg == 0 {
			if v > 0 {
				pct = 100
			}
		} else {
			pct = v / tg * 100
		}
	}

	if math.IsInf(pct, 0) || math.IsNaN(pct) {
		pct = 0
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// lowerBetterPatterns lists the KPI name fragments that historically mark a
// lower-is-better metric. Used only to default the inverted flag when a KPI
// is created; classification reads the stored flag.
var lowerBetterPatterns = []string{
	"días de cobro",
	"días de pago",
	"tiempo de entrega",
	"tiempo promedio",
	"tiempo de respuesta",
	"tiempo de ciclo",
	"días de inventario",
	"rotación de inventario",
	"defectos",
	"errores",
	"quejas",
	"devoluciones",
	"huella de carbono",
	"costos",
	"gastos",
}

// SuggestInverted reports whether a KPI name looks like a lower-is-better
// metric.
func SuggestInverted(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range lowerBetterPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsCriticalTransition reports whether a status change warrants a user
// notification, and whether it is a recovery.
func IsCriticalTransition(from, to Status) (critical, recovered bool) {
	switch {
	case from == StatusComplies && to == StatusNotCompliant:
		return true, false
	case from == StatusAlert && to == StatusNotCompliant:
		return true, false
	case from == StatusNotCompliant && to == StatusComplies:
		return true, true
	default:
		return false, false
	}
}
