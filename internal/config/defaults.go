package config

const (
	defaultDataDir         = "~/.local/share/vinyl"
	defaultDownloadDir     = "~/.local/share/vinyl/downloads"
	defaultLogDir          = "~/.local/share/vinyl/logs"
	defaultMaxConcurrent   = 3
	defaultYtdlpBinary     = "yt-dlp"
	defaultMpvBinary       = "mpv"
	defaultVolume          = 100
	defaultVolumeStep      = 10
	defaultSeekStepSeconds = 15
	defaultTickIntervalMs  = 500
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

func defaultInvidiousInstances() []string {
	return []string{
		"https://vid.puffyan.us",
		"https://y.com.sb",
		"https://invidious.nerdvpn.de",
		"https://invidious.tiekoetter.com",
		"https://inv.bp.projectsegfau.lt",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
		},
		Downloads: Downloads{
			MaxConcurrent: defaultMaxConcurrent,
			YtdlpBinary:   defaultYtdlpBinary,
		},
		Playback: Playback{
			MpvBinary:       defaultMpvBinary,
			Volume:          defaultVolume,
			VolumeStep:      defaultVolumeStep,
			SeekStepSeconds: defaultSeekStepSeconds,
			TickIntervalMs:  defaultTickIntervalMs,
		},
		YouTube: YouTube{
			InvidiousInstances: defaultInvidiousInstances(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
