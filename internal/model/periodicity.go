package model

import (
	"fmt"
	"strings"
)

// Periodicity values are stored with the labels the dashboard has always used.
type Periodicity string

const (
	PeriodicityMonthly    Periodicity = "Mensal"
	PeriodicityQuarterly  Periodicity = "Trimestral"
	PeriodicitySemiannual Periodicity = "Semestral"
	PeriodicityAnnual     Periodicity = "Anual"
)

var periodicityAliases = map[string]Periodicity{
	"mensal":     PeriodicityMonthly,
	"monthly":    PeriodicityMonthly,
	"trimestral": PeriodicityQuarterly,
	"quarterly":  PeriodicityQuarterly,
	"semestral":  PeriodicitySemiannual,
	"semiannual": PeriodicitySemiannual,
	"anual":      PeriodicityAnnual,
	"annual":     PeriodicityAnnual,
}

func Periodicities() []Periodicity {
	return []Periodicity{PeriodicityMonthly, PeriodicityQuarterly, PeriodicitySemiannual, PeriodicityAnnual}
}

func ParsePeriodicity(raw string) (Periodicity, error) {
	if p, ok := periodicityAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriodicity, raw)
}

func (p Periodicity) Valid() bool {
	switch p {
	case PeriodicityMonthly, PeriodicityQuarterly, PeriodicitySemiannual, PeriodicityAnnual:
		return true
	}
	return false
}

// Months is the calendar offset of one period.
func (p Periodicity) Months() (int, error) {
	switch p {
	case PeriodicityMonthly:
		return 1, nil
	case PeriodicityQuarterly:
		return 3, nil
	case PeriodicitySemiannual:
		return 6, nil
	case PeriodicityAnnual:
		return 12, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPeriodicity, string(p))
}
