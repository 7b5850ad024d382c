package configs

// Ledger holds monetary settings. Decimals is the number of fractional
// digits between the smallest unit and the display unit: with 2, an amount
// of 1050 is shown as "10.50".
type Ledger struct {
	Decimals int32 `env:"DECIMALS" envDefault:"2"`
}
