package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LessonPath  string // lesson .json file or directory
	DataDir     string // visit-history database location, empty disables persistence
	SectionSlug string // course section addressed by state writes
	StateURL    string // state service host, enables live writes during replay

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Preview         bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.LessonPath == "" {
		return nil, errors.New("LessonPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
