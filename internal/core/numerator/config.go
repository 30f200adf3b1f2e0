// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict writes the counter for every number.
	// Sequential without gaps; used for invoices and returns.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges of numbers in memory.
	// May leave gaps after a restart but never repeats a number.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	// Strategy to use for number generation
	Strategy Strategy
	// RangeSize is the number of values reserved at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix printed before the sequence value (e.g., "INV", "GRN")
	Prefix string

	// Key identifies the durable counter. Defaults to Prefix.
	Key string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum width of the sequence part (default 3)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns the document numbering format: PREFIX-001, never reset.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		Key:         prefix,
		IncludeYear: false,
		PadWidth:    3,
		ResetPeriod: "never",
	}
}

// CounterKey returns the key of the durable counter backing cfg.
func (c Config) CounterKey() string {
	if c.Key != "" {
		return c.Key
	}
	return c.Prefix
}
