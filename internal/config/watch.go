package config

import (
	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/vroute/internal/errors"
)

// Watch calls fn with the reloaded configuration every time the file at
// path is written. A file that no longer parses or validates is reported
// through err; the previous configuration stays in effect for the caller.
// The watch lasts for the life of the process.
func Watch(path string, fn func(cfg *Config, err error)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.New("R031").
			WithDetail("Failed to watch " + path + ": " + err.Error()).
			Wrap(err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v, path)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			fn(nil, err)
			return
		}
		fn(cfg, nil)
	})
	v.WatchConfig()
	return nil
}
