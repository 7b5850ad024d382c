package configs

import (
	"fmt"
	"strings"
)

// Store driver names.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Store selects where ledger state lives. The memory driver keeps
// everything in process and loses it on restart; postgres persists it.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	// SeedDemo opens a few demo campaigns on startup.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
}

// Validate normalises Driver and rejects unknown values.
func (c *Store) Validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case DriverMemory, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
}
