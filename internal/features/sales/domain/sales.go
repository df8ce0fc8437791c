package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	kpidomain "digo-dashboard/internal/features/kpis/domain"
)

var (
	// ErrMonthClosed is returned when a write targets a month that
	// already has an official monthly record.
	ErrMonthClosed = errors.New("sales: month already closed")
	// ErrNoSalesKpi is returned when a company has no sales volume KPI.
	ErrNoSalesKpi = errors.New("sales: sales volume kpi not found")
	// ErrNoWeeklyData is returned when a close finds no weekly records.
	ErrNoWeeklyData = errors.New("sales: no weekly records for period")
	// ErrUnknownMonth is returned when a request names a month that is
	// not a Spanish month name.
	ErrUnknownMonth = errors.New("sales: unknown month name")
)

// SalesKpiName is the name fragment identifying a company's sales
// volume KPI.
const SalesKpiName = "Volumen de ventas"

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name for a month.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// MonthNumber resolves a Spanish month name to its 1 based number.
// Returns 0 when the name is unknown.
func MonthNumber(name string) int {
	for i, n := range monthNames {
		if strings.EqualFold(n, name) {
			return i + 1
		}
	}
	return 0
}

// Period identifies one sales week within a month.
type Period struct {
	WeekNumber int    `json:"weekNumber"`
	WeekText   string `json:"weekText"`
	Month      string `json:"month"`
	Year       int    `json:"year"`
	Label      string `json:"period"`
}

// DetectPeriod derives the current sales week from a date. Weeks run in
// fixed blocks of seven days, so day 29 onward falls in week 5.
func DetectPeriod(now time.Time) Period {
	week := (now.Day() + 6) / 7
	month := MonthName(now.Month())
	return Period{
		WeekNumber: week,
		WeekText:   fmt.Sprintf("Semana %d", week),
		Month:      month,
		Year:       now.Year(),
		Label:      fmt.Sprintf("Semana %d - %s %d", week, month, now.Year()),
	}
}

// ManualPeriod builds a period from admin supplied parts.
func ManualPeriod(weekNumber int, month string, year int) Period {
	return Period{
		WeekNumber: weekNumber,
		WeekText:   fmt.Sprintf("Semana %d", weekNumber),
		Month:      month,
		Year:       year,
		Label:      fmt.Sprintf("Semana %d - %s %d", weekNumber, month, year),
	}
}

// MonthLabel is the period label of an official monthly record.
func MonthLabel(month string, year int) string {
	return fmt.Sprintf("%s %d", month, year)
}

// IsWeeklyPeriod reports whether a period label belongs to a weekly
// record rather than a monthly close.
func IsWeeklyPeriod(label string) bool {
	return strings.Contains(label, "Semana")
}

// PreviousMonth returns the month preceding the given date, rolling the
// year back in January.
func PreviousMonth(now time.Time) (string, int) {
	if now.Month() == time.January {
		return MonthName(time.December), now.Year() - 1
	}
	return MonthName(now.Month() - 1), now.Year()
}

// StatusForCompliance classifies a sales compliance percentage. 95% or
// more complies, 85% or more is an alert.
func StatusForCompliance(pct float64) kpidomain.Status {
	switch {
	case pct >= 95:
		return kpidomain.StatusComplies
	case pct >= 85:
		return kpidomain.StatusAlert
	default:
		return kpidomain.StatusNotCompliant
	}
}

// Unit returns the sales unit for a company. Dura reports kilograms,
// Orsega reports pieces.
func Unit(companyID int) string {
	if companyID == 1 {
		return "KG"
	}
	return "unidades"
}

// FormatAmount renders a sales amount with thousands separators and the
// company unit, e.g. "55,620 KG".
func FormatAmount(value float64, companyID int) string {
	return groupThousands(value) + " " + Unit(companyID)
}

func groupThousands(v float64) string {
	neg := v < 0
	v = math.Abs(v)

	var intPart, fracPart string
	if v == math.Trunc(v) {
		intPart = strconv.FormatInt(int64(v), 10)
	} else {
		s := strconv.FormatFloat(v, 'f', 2, 64)
		dot := strings.IndexByte(s, '.')
		intPart, fracPart = s[:dot], s[dot:]
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// WeeklyTarget derives the weekly sales target from an annual goal.
func WeeklyTarget(annualGoal float64) float64 {
	monthly := math.Round(annualGoal / 12)
	return math.Round(monthly / 4)
}

// MonthlyTarget derives the monthly sales target from an annual goal.
func MonthlyTarget(annualGoal float64) float64 {
	return math.Round(annualGoal / 12)
}
