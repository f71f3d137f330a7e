package config

type HTTP struct {
	Enabled bool   `env:"ENABLED,expand" envDefault:"false"`
	Address string `env:"ADDRESS,expand" envDefault:":3002"`
}
