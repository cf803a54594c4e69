package config

import (
	"github.com/dshills/blockpad/internal/config/loader"
	"github.com/dshills/blockpad/internal/config/watcher"
)

// Watch reloads the config file at path whenever it changes and passes
// the result to onReload. Removing the file reports nothing; the
// previous configuration stays in effect. The caller closes the returned
// watcher.
func Watch(path string, env loader.Loader, onReload func(*Config, error), opts ...watcher.Option) (*watcher.Watcher, error) {
	w, err := watcher.New(opts...)
	if err != nil {
		return nil, err
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		onReload(LoadFrom(path, env))
	})
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}
