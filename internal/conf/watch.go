package conf

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/tphakala/graphing-app/internal/logger"
)

// LevelSetter changes the default log level at runtime.
type LevelSetter interface {
	SetDefaultLevel(level logger.LogLevel)
}

// WatchLogLevel re-reads logging.default_level whenever the config file is
// written and applies it to target. Other settings need a restart.
func WatchLogLevel(v *viper.Viper, target LevelSetter) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		applyLogLevel(v.GetString("logging.default_level"), target)
	})
	v.WatchConfig()
}

func applyLogLevel(raw string, target LevelSetter) {
	level, ok := logger.ParseLevel(raw)
	if !ok {
		GetLogger().Warn("ignoring unknown log level from config reload", logger.String("level", raw))
		return
	}
	target.SetDefaultLevel(level)
	GetLogger().Info("log level reloaded", logger.String("level", string(level)))
}
