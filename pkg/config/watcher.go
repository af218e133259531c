package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch reloads the rate-limit section when the config file changes on disk.
// Only the sections consulted per request pick the change up; connection
// settings still require a restart.
func Watch(v *viper.Viper, cfg *Config, onChange func(RateLimitConfig), log *slog.Logger) {
	if v == nil || cfg == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Config
		if err := v.Unmarshal(&updated); err != nil {
			log.Error("config reload failed, keeping previous values",
				slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		applyDefaults(&updated)

		log.Info("config reloaded", slog.String("file", e.Name))

		if onChange != nil {
			onChange(updated.RateLimit)
		}
	})
	v.WatchConfig()
}
