package configs

// Redis configures the stream that committed notifications are appended to.
// An empty Addr disables the stream.
type Redis struct {
	Addr     string `env:"ADDRESS"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Stream   string `env:"STREAM" envDefault:"fundraiser:events"`
	// MaxLen caps the stream length approximately; 0 means unbounded.
	MaxLen int64 `env:"MAX_LEN" envDefault:"100000"`
}

// Enabled reports whether a Redis address was configured.
func (c Redis) Enabled() bool { return c.Addr != "" }
