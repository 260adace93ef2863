package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownloads()
	c.normalizePlayback()
	c.normalizeYouTube()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownloads() {
	if c.Downloads.MaxConcurrent == 0 {
		c.Downloads.MaxConcurrent = defaultMaxConcurrent
	}
	c.Downloads.YtdlpBinary = strings.TrimSpace(c.Downloads.YtdlpBinary)
	if c.Downloads.YtdlpBinary == "" {
		c.Downloads.YtdlpBinary = defaultYtdlpBinary
	}
}

func (c *Config) normalizePlayback() {
	c.Playback.MpvBinary = strings.TrimSpace(c.Playback.MpvBinary)
	if c.Playback.MpvBinary == "" {
		c.Playback.MpvBinary = defaultMpvBinary
	}
	if c.Playback.Volume == 0 {
		c.Playback.Volume = defaultVolume
	}
	if c.Playback.VolumeStep == 0 {
		c.Playback.VolumeStep = defaultVolumeStep
	}
	if c.Playback.SeekStepSeconds == 0 {
		c.Playback.SeekStepSeconds = defaultSeekStepSeconds
	}
	if c.Playback.TickIntervalMs == 0 {
		c.Playback.TickIntervalMs = defaultTickIntervalMs
	}
}

func (c *Config) normalizeYouTube() {
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("VINYL_YT_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	instances := c.YouTube.InvidiousInstances[:0]
	for _, instance := range c.YouTube.InvidiousInstances {
		trimmed := strings.TrimRight(strings.TrimSpace(instance), "/")
		if trimmed != "" {
			instances = append(instances, trimmed)
		}
	}
	c.YouTube.InvidiousInstances = instances
	if len(c.YouTube.InvidiousInstances) == 0 {
		c.YouTube.InvidiousInstances = defaultInvidiousInstances()
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
