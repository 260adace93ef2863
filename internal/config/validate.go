package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownloads(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if c.Downloads.MaxConcurrent < 1 {
		return errors.New("downloads.max_concurrent must be at least 1")
	}
	if c.Downloads.MaxConcurrent > 16 {
		return errors.New("downloads.max_concurrent must be 16 or fewer")
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.Volume < 0 || c.Playback.Volume > 130 {
		return errors.New("playback.volume must be between 0 and 130")
	}
	if c.Playback.VolumeStep < 1 || c.Playback.VolumeStep > 50 {
		return errors.New("playback.volume_step must be between 1 and 50")
	}
	if c.Playback.SeekStepSeconds < 1 {
		return errors.New("playback.seek_step_seconds must be at least 1")
	}
	if c.Playback.TickIntervalMs < 50 {
		return errors.New("playback.tick_interval_ms must be at least 50")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
