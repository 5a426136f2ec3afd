package config

import "errors"

// Log configures a rotating log file. Without it logs go to stderr only.
type Log struct {
	File       string `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups" json:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays" json:"maxAgeDays"`
	Compress   bool   `toml:"compress" json:"compress"`
	Console    bool   `toml:"console" json:"console"` // also write to stderr
}

func (c Log) IsValid() error {
	if c.File == "" {
		return newFieldErr("file", isEmptyErr)
	}
	if c.MaxSizeMB < 0 {
		return newFieldErr("maxSizeMB", errors.New("must be >= 0"))
	}
	if c.MaxBackups < 0 {
		return newFieldErr("maxBackups", errors.New("must be >= 0"))
	}
	if c.MaxAgeDays < 0 {
		return newFieldErr("maxAgeDays", errors.New("must be >= 0"))
	}
	return nil
}
