package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the catalog whenever a source dump changes",
	Long: `Watches the configured source files and reruns the build pipeline after
each change. Rapid bursts of writes collapse into a single rebuild once
the debounce window passes. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no sources configured; add a sources section to %s", configPath)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		// Watch parent directories: editors often replace files, which
		// drops the watch on the file itself.
		dirs := map[string]bool{}
		watched := map[string]bool{}
		for _, src := range cfg.Sources {
			abs, err := filepath.Abs(src.Path)
			if err != nil {
				return err
			}
			watched[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
		for dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			logger.Info("watching", zap.String("dir", dir))
		}

		report, err := runBuild(ctx)
		if err != nil {
			return err
		}
		fmt.Println(report.Summary())

		var timer *time.Timer
		rebuild := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				logger.Info("watch stopped")
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				abs, _ := filepath.Abs(event.Name)
				if !watched[abs] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("source changed", zap.String("path", abs), zap.String("op", event.Op.String()))
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case rebuild <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", zap.Error(err))
			case <-rebuild:
				report, err := runBuild(ctx)
				if err != nil {
					logger.Error("rebuild failed", zap.Error(err))
					continue
				}
				fmt.Println(report.Summary())
			}
		}
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a rebuild")
}
