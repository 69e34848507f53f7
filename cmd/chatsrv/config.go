package main

import "time"

type Config struct {
	Host           string        `env:"HOST,default=localhost"`
	Port           int           `env:"PORT,default=12345"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
	FilesDir       string        `env:"FILES_DIR,default=files"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,default=files_index"`
	MaskCharacter  string        `env:"MASK_CHARACTER,default=*"`
	MetricInterval time.Duration `env:"METRIC_INTERVAL,default=30s"`
}
