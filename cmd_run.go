package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runOutDir string
	runJobs   int
)

var runCmd = &cobra.Command{
	Use:   "run <script>...",
	Short: "Evaluate job scripts and write their programs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScripts(cmd.Context(), NewApp(cfg, logger), args, runOutDir, runJobs)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutDir, "out", "o", "", "output directory (default: output.dir, else next to each script)")
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", runtime.NumCPU(), "scripts built at the same time")
}

// errBuildFailed marks a job that produced errors instead of a program.
var errBuildFailed = errors.New("job failed")

// runScripts builds scripts with at most jobs running at once. It stops
// starting new scripts after the first failure and returns it.
func runScripts(ctx context.Context, app *App, paths []string, outDir string, jobs int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return runScript(app, path, outDir)
		})
	}
	return g.Wait()
}

// runScript builds one script and writes its program.
func runScript(app *App, path, outDir string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := app.Evaluate(name, string(src))
	return writeResult(app, path, outDir, res)
}

// writeResult logs findings and writes the program to the path chosen by
// Config.OutputPath.
func writeResult(app *App, src, outDir string, res EvalResult) error {
	for _, w := range res.Warnings {
		app.log.Warn(w.Message, "file", src)
	}
	if !res.OK() {
		for _, e := range res.Errors {
			app.log.Error(e.Message, "file", src, "line", e.Line)
		}
		return fmt.Errorf("%s: %w", src, errBuildFailed)
	}
	dst := app.cfg.OutputPath(outDir, src)
	if err := writeProgram(dst, res.Program); err != nil {
		return err
	}
	app.log.Info("program written", "file", dst, "lines", len(res.Program))
	return nil
}

func writeProgram(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
