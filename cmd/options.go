package cmd

import (
	"time"

	"github.com/smazurov/lightnode/internal/devices"
	"github.com/smazurov/lightnode/internal/mqtt"
	"github.com/smazurov/lightnode/internal/output"
)

// DefaultConfigPath is read when --config is not given. A missing file is fine.
const DefaultConfigPath = "/etc/lightnode/config.toml"

// Options for the CLI - flat structure with toml mapping.
// Field names map to flag names (RetryDelay -> --retry-delay).
type Options struct {
	Config string

	// Scan settings
	Roots      []string      `toml:"scan.roots" env:"SCAN_ROOTS"`
	SysfsRoot  string        `toml:"scan.sysfs_root" env:"SCAN_SYSFS_ROOT"`
	Workers    int           `toml:"scan.workers" env:"SCAN_WORKERS"`
	Lenient    bool          `toml:"scan.lenient" env:"SCAN_LENIENT"`
	Retries    int           `toml:"scan.retries" env:"SCAN_RETRIES"`
	RetryDelay time.Duration `toml:"scan.retry_delay" env:"SCAN_RETRY_DELAY"`

	// Output settings
	Format string `toml:"output.format" env:"OUTPUT_FORMAT"`

	// Metrics settings
	Textfile string `toml:"metrics.textfile" env:"METRICS_TEXTFILE"`

	// MQTT settings
	Broker      string `toml:"mqtt.broker" env:"MQTT_BROKER"`
	TopicPrefix string `toml:"mqtt.topic_prefix" env:"MQTT_TOPIC_PREFIX"`
	ClientID    string `toml:"mqtt.client_id" env:"MQTT_CLIENT_ID"`

	// Logging settings
	LogLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LogFormat string `toml:"logging.format" env:"LOGGING_FORMAT"`
}

// DefaultOptions returns the flag defaults.
func DefaultOptions() *Options {
	return &Options{
		Config:      DefaultConfigPath,
		Roots:       append([]string(nil), devices.DefaultRoots...),
		SysfsRoot:   "/",
		Workers:     1,
		RetryDelay:  100 * time.Millisecond,
		Format:      output.FormatText,
		TopicPrefix: mqtt.DefaultTopicPrefix,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}
