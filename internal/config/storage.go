package config

type Storage struct {
	Database Database `envPrefix:"DATABASE_"`
}

type Database struct {
	// An empty DSN disables the task journal
	DSN string `env:"DSN,expand" envDefault:""`
}
