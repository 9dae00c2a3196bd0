package main

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var defPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate a protocol definition on every save",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(defPath)
		},
	}
	cmd.Flags().StringVarP(&defPath, "def", "d", "", "path to the JSON protocol definition to watch (required)")
	cmd.MarkFlagRequired("def")
	return cmd
}

// runWatch validates defPath once immediately, then re-validates on every
// write event, debounced by cfg.WatchDebounce so a burst of saves from an
// editor collapses into a single re-validation.
func runWatch(defPath string) error {
	logger := newLogger(cfg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(defPath); err != nil {
		return err
	}

	revalidate := func() {
		p, err := loadProtocol(defPath)
		if err != nil {
			logger.Error("load failed", "file", defPath, "err", err)
			return
		}
		if err := validateFormat(p); err != nil {
			logger.Error("validation failed", "file", defPath, "err", err)
			return
		}
		logger.Info("validated", "file", defPath)
	}
	revalidate()

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(cfg.WatchDebounce, revalidate)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}
