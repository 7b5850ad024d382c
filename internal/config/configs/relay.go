package configs

import "time"

// Relay controls how often committed notifications are forwarded to
// publishers and how many are read per batch.
type Relay struct {
	Interval  time.Duration `env:"INTERVAL" envDefault:"1s"`
	BatchSize int           `env:"BATCH_SIZE" envDefault:"100"`
}
