// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in infrastructure layer.
package numerator

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=numerator

import (
	"context"
	"fmt"
	"time"
)

// Generator generates sequential document numbers.
// Numbers come from a durable counter per Config key; counting existing
// documents is never used, so deleting a document does not free its number.
type Generator interface {
	// GetNextNumber generates the next document number (e.g., INV-001).
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the counter value (for importing legacy documents).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// BuildKey creates the sequence key based on config and period.
func BuildKey(cfg Config, period time.Time) string {
	key := cfg.CounterKey()
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", key, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", key, period.Format("2006"))
	default:
		return key
	}
}

// Format creates the final number string.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 3
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts numeric part from formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	patterns := []string{
		"%*[^-]-%*d-%d",
		"%*[^-]-%d",
	}

	for _, pattern := range patterns {
		if _, err := fmt.Sscanf(formatted, pattern, &num); err == nil {
			return num
		}
	}

	return -1
}
