package daemon

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// configDebounce coalesces the truncate and write of a single save.
const configDebounce = 200 * time.Millisecond

// watchConfig calls reload after the file at path changes. The parent
// directory is watched, so editors that replace the file are noticed too.
func watchConfig(path string, reload func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create config watcher")
	}

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, pkgerrors.Wrapf(err, "failed to watch %s", filepath.Dir(target))
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					if timer != nil {
						timer.Stop()
					}
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				logrus.WithField("op", ev.Op.String()).Debug("config file changed")
				if timer == nil {
					timer = time.AfterFunc(configDebounce, reload)
				} else {
					timer.Reset(configDebounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logrus.Warnf("config watcher: %v", err)
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}
