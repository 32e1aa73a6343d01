package main

import (
	"os"
	"strings"
	"testing"

	"github.com/3DCP-TUe/SaladSlicer-sub001/pkg/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(config.Default(), nil)
}

// evalExample runs an example script through the full pipeline: script
// -> engine -> job -> validate -> preview -> program.
func evalExample(t *testing.T, app *App, file string) EvalResult {
	t.Helper()
	source, err := os.ReadFile("examples/" + file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	result := app.Evaluate(strings.TrimSuffix(file, ".lisp"), string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	return result
}

func checkProgram(t *testing.T, lines []string) {
	t.Helper()
	if len(lines) == 0 {
		t.Fatal("expected a program")
	}
	if lines[len(lines)-1] != "M30" {
		t.Errorf("program should end with M30, got %q", lines[len(lines)-1])
	}
	moves := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "G1 X") {
			moves++
		}
	}
	if moves == 0 {
		t.Error("program has no moves")
	}
}

func TestE2EVaseExample(t *testing.T) {
	result := evalExample(t, newTestApp(t), "vase.lisp")
	checkProgram(t, result.Program)

	if len(result.Previews) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(result.Previews))
	}
	p := result.Previews[0]
	if p.Name != "vase" {
		t.Errorf("preview name = %q, want vase", p.Name)
	}
	if len(p.Vertices) == 0 || len(p.Vertices)%3 != 0 {
		t.Errorf("preview has %d floats, want a non-empty multiple of 3", len(p.Vertices))
	}
	if p.Color == "" {
		t.Error("preview has no color assigned")
	}

	var extruded bool
	for _, l := range result.Program {
		if strings.HasPrefix(l, "G1 X") && strings.Contains(l, " E") {
			extruded = true
			break
		}
	}
	if !extruded {
		t.Error("vase moves should carry the E variable")
	}
}

func TestE2EWallExample(t *testing.T) {
	result := evalExample(t, newTestApp(t), "wall.lisp")
	checkProgram(t, result.Program)

	if len(result.Previews) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(result.Previews))
	}
	if got := result.Previews[0].Name; got != "walls/wall" {
		t.Errorf("preview name = %q, want walls/wall", got)
	}
}

func TestE2ETowerExample(t *testing.T) {
	result := evalExample(t, newTestApp(t), "tower.lisp")
	checkProgram(t, result.Program)

	if len(result.Previews) != 1 || result.Previews[0].Name != "tower" {
		t.Fatalf("expected one preview named tower, got %+v", result.Previews)
	}
}

func TestE2EExampleConfig(t *testing.T) {
	cfg, err := config.Load("examples/config.yaml")
	if err != nil {
		t.Fatalf("failed to load example config: %v", err)
	}
	result := evalExample(t, NewApp(cfg, nil), "vase.lisp")
	checkProgram(t, result.Program)

	if got := cfg.OutputPath("out", "examples/vase.lisp"); got != "out/vase.mpf" {
		t.Errorf("output path = %q, want out/vase.mpf", got)
	}
}

// TestE2EEmptySource ensures an empty script is rejected without a program.
func TestE2EEmptySource(t *testing.T) {
	result := newTestApp(t).Evaluate("empty", "")

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error for empty source, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "no program objects") {
		t.Errorf("unexpected error: %s", result.Errors[0].Message)
	}
	if len(result.Program) != 0 {
		t.Errorf("expected no program, got %d lines", len(result.Program))
	}
}

// TestE2ESyntaxError ensures parse errors are surfaced to the caller.
func TestE2ESyntaxError(t *testing.T) {
	result := newTestApp(t).Evaluate("bad", "(program (feed-rate 100)")

	if len(result.Errors) == 0 {
		t.Fatal("expected errors for malformed source")
	}
	if len(result.Previews) != 0 {
		t.Errorf("expected 0 previews on error, got %d", len(result.Previews))
	}
}
