package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rileyhilliard/stripchart/internal/errors"
)

// Watch reloads the config at path whenever it changes on disk and passes
// the result to onChange. A reload that fails to parse or validate reports
// the error and keeps watching. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors
// which save by rename are still seen.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot watch config file",
			"Live reload is unavailable; restart stripchart to pick up changes")
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot watch config directory: "+filepath.Dir(target),
			"Check the directory exists and is readable")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(target)
			if err == nil {
				err = Validate(cfg)
			}
			if err != nil {
				onChange(nil, err)
				continue
			}
			onChange(cfg, nil)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onChange(nil, err)
		}
	}
}
