package profile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueFormatter renders values of a profile's value axis.
type ValueFormatter interface {
	Format(v float64) string
}

// TimeUnit is the unit a [TimeFormatter] interprets raw values in.
type TimeUnit string

const (
	Nanoseconds  TimeUnit = "nanoseconds"
	Microseconds TimeUnit = "microseconds"
	Milliseconds TimeUnit = "milliseconds"
	Seconds      TimeUnit = "seconds"
)

// TimeFormatter formats durations, picking the largest readable unit.
type TimeFormatter struct {
	multiplier float64 // seconds per raw unit
}

// NewTimeFormatter returns a formatter for values expressed in unit.
// Unknown units are treated as seconds.
func NewTimeFormatter(unit TimeUnit) TimeFormatter {
	switch unit {
	case Nanoseconds:
		return TimeFormatter{multiplier: 1e-9}
	case Microseconds:
		return TimeFormatter{multiplier: 1e-6}
	case Milliseconds:
		return TimeFormatter{multiplier: 1e-3}
	default:
		return TimeFormatter{multiplier: 1}
	}
}

func (f TimeFormatter) Format(v float64) string {
	s := v * f.multiplier
	switch {
	case s/60 >= 1:
		return fmt.Sprintf("%.2fmin", s/60)
	case s >= 1:
		return fmt.Sprintf("%.2fs", s)
	case s/1e-3 >= 1:
		return fmt.Sprintf("%.2fms", s/1e-3)
	case s/1e-6 >= 1:
		return fmt.Sprintf("%.2fµs", s/1e-6)
	default:
		return fmt.Sprintf("%.2fns", s/1e-9)
	}
}

// BytesFormatter formats byte counts with binary prefixes.
type BytesFormatter struct{}

func (BytesFormatter) Format(v float64) string {
	const k = 1024
	switch {
	case v < k:
		return fmt.Sprintf("%.0f B", v)
	case v < k*k:
		return fmt.Sprintf("%.2f KB", v/k)
	case v < k*k*k:
		return fmt.Sprintf("%.2f MB", v/(k*k))
	default:
		return fmt.Sprintf("%.2f GB", v/(k*k*k))
	}
}

// RawFormatter prints values with thousands separators.
type RawFormatter struct{}

func (RawFormatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatterForUnit maps a pprof-style unit name to a formatter.
func FormatterForUnit(unit string) ValueFormatter {
	switch strings.ToLower(unit) {
	case "nanoseconds", "ns":
		return NewTimeFormatter(Nanoseconds)
	case "microseconds", "us":
		return NewTimeFormatter(Microseconds)
	case "milliseconds", "ms":
		return NewTimeFormatter(Milliseconds)
	case "seconds", "s":
		return NewTimeFormatter(Seconds)
	case "bytes":
		return BytesFormatter{}
	default:
		return RawFormatter{}
	}
}
