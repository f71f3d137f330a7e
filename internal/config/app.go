package config

import "time"

type App struct {
	// Defaults to <user config dir>/fileworks if empty
	DataDir  string `env:"DATA_DIR,expand"`
	Language string `env:"LANGUAGE,expand" envDefault:"en"`
	Debug    bool   `env:"DEBUG,expand" envDefault:"false"`
}

type Tools struct {
	// Paths maps a tool name (ie "magick") to its executable
	Paths map[string]string `env:"PATHS" envKeyValSeparator:":"`
}

type Sandbox struct {
	// Zero means no timeout
	Timeout time.Duration `env:"TIMEOUT,expand" envDefault:"0"`
}
