package common

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultRoot is the storage root used when nothing else is configured
	DefaultRoot = "data"
	// DefaultPollInterval is the interval used by polling waits
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultLogLevel is the level used when nothing else is configured
	DefaultLogLevel = "info"
)

// Config holds the configuration shared by all fsSync primitives of a process.
type Config struct {
	// Root is the directory below which all lock and counter files are stored.
	// All cooperating processes must use the same root.
	Root string

	// PollInterval is the sleep between two checks of a polling wait
	PollInterval time.Duration

	// Logging configuration
	LogLevel string

	// Whether to dump metrics when the process exits
	Metrics bool
}

// DefaultConfig returns a Config populated with the defaults.
func DefaultConfig() Config {
	return Config{
		Root:         DefaultRoot,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Storage")
	addField("Root", c.Root)

	addSection("Locks")
	addField("Poll Interval", c.PollInterval.String())

	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Metrics", fmt.Sprintf("%t", c.Metrics))

	return sb.String()
}
