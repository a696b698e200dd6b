package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rintaro/es6link/internal/clilog"
	"github.com/rintaro/es6link/internal/config"
	"github.com/rintaro/es6link/internal/linkrun"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the linker whenever a module fixture changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, flagRoot, "")
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer watcher.Close()

			if err := addRecursive(watcher, cfg.Root); err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			runOnce(cfg.Root)

			// Changes within a source tree tend to arrive as a burst of events
			// (a save, a rename, a temp-file dance); debounce before re-running.
			var debounce *time.Timer
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !strings.HasSuffix(event.Name, ".mod.json") {
						continue
					}
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(150*time.Millisecond, func() {
						runOnce(cfg.Root)
					})

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Println("watch error:", err)
				}
			}
		},
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func runOnce(root string) {
	result, err := linkrun.Run(root)
	if err != nil {
		fmt.Println("es6link:", err)
		return
	}
	errorCount := clilog.Print(result.Log)
	clilog.Summary(errorCount)
}
