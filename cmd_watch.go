package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// ScriptExt is the file extension of job scripts.
const ScriptExt = ".lisp"

var (
	watchOutDir   string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <script-or-dir>...",
	Short: "Rebuild job scripts whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchScripts(ctx, NewApp(cfg, logger), args, watchOutDir, watchDebounce)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "output directory (default: output.dir, else next to each script)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "quiet period before rebuilding")
}

// watchScripts builds the scripts once, then rebuilds each one after it
// changes. Arguments may be scripts or directories of scripts. It returns
// when ctx is done.
func watchScripts(ctx context.Context, app *App, args []string, outDir string, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	var scripts, scriptDirs []string
	for _, a := range args {
		if info, err := os.Stat(a); err == nil && info.IsDir() {
			scriptDirs = append(scriptDirs, filepath.Clean(a))
			continue
		}
		scripts = append(scripts, filepath.Clean(a))
	}
	dirs := lo.Uniq(append(slices.Clone(scriptDirs), lo.Map(scripts, func(s string, _ int) string {
		return filepath.Dir(s)
	})...))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
		app.log.Info("watching", "dir", d)
	}
	if len(scripts) > 0 {
		if err := runScripts(ctx, app, scripts, outDir, runtime.NumCPU()); err != nil {
			app.log.Warn("initial build failed", "err", err)
		}
	}

	// Named scripts are rebuilt, and so is every script in a named directory.
	wanted := func(path string) bool {
		path = filepath.Clean(path)
		if filepath.Ext(path) != ScriptExt {
			return false
		}
		return slices.Contains(scripts, path) || slices.Contains(scriptDirs, filepath.Dir(path))
	}

	pending := make(map[string]bool)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		for path := range pending {
			if err := runScript(app, path, outDir); err != nil {
				app.log.Warn("rebuild failed", "err", err)
			}
		}
		clear(pending)
		timer, timerC = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) || !wanted(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-timerC:
			flush()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			app.log.Warn("watch error", "err", err)
		}
	}
}
