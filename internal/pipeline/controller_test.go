package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TonyCrane/haskellings/internal/config"
	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/logging"
	"github.com/TonyCrane/haskellings/internal/report"
)

// =============================================================================
// Test fixtures: fake toolchains and exercises
// =============================================================================

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("writing script %s: %v", name, err)
	}
	return path
}

// fakeToolchain returns a fake compiler script. It appends one line per
// invocation to invocationLog. When payload is non-empty and an -o flag
// is present, the payload script is installed as the "built" binary.
// It exits with the given code.
func fakeToolchain(t *testing.T, dir, payload string, exitCode int) (toolchain, invocationLog string) {
	t.Helper()
	invocationLog = filepath.Join(dir, "invocations.log")

	body := fmt.Sprintf(`echo "$@" >> %q
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
if [ -n "$out" ] && [ -n %q ]; then
  cp %q "$out"
  chmod +x "$out"
fi
exit %d
`, invocationLog, payload, payload, exitCode)

	// A failing compiler also writes diagnostics to stderr.
	if exitCode != 0 {
		body = "echo 'error: something is not quite right' >&2\n" + body
	}

	return writeScript(t, dir, "fake-ghc", body), invocationLog
}

// testEnv creates a project tree, an exercise source file, and a
// controller whose report output is captured in the returned buffer.
func testEnv(t *testing.T, cfg *config.Config, ex exercise.Descriptor) (*Controller, *bytes.Buffer) {
	t.Helper()

	srcDir := filepath.Join(cfg.ExercisesRoot(), ex.Directory)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("creating exercise dir: %v", err)
	}
	src := filepath.Join(srcDir, ex.SourceFile())
	if err := os.WriteFile(src, []byte("main :: IO ()\nmain = return ()\n"), 0o644); err != nil {
		t.Fatalf("writing exercise source: %v", err)
	}

	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter(io.Discard, "text", "info")
	return NewController(cfg, report.NewPrinterWithWriter(&buf), logger), &buf
}

func testConfig(t *testing.T, toolchain string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Root = t.TempDir()
	cfg.GHCPath = toolchain
	cfg.PackageDB = filepath.Join(cfg.Root, "pkgdb")
	return cfg
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return len(strings.Split(strings.TrimRight(string(data), "\n"), "\n"))
}

// =============================================================================
// Build failure
// =============================================================================

func TestRun_CompileError_SkipsStrategies(t *testing.T) {
	scratch := t.TempDir()
	// The payload would create a sentinel file if it ever ran.
	sentinel := filepath.Join(scratch, "ran")
	payload := writeScript(t, scratch, "payload.sh", "touch "+sentinel+"\nexit 0\n")
	toolchain, _ := fakeToolchain(t, scratch, payload, 1)

	for _, kind := range []exercise.Kind{
		exercise.Compiled(),
		exercise.Tested(),
		exercise.Interactive(nil, exercise.AnyOutput()),
	} {
		t.Run(kind.Tag.String(), func(t *testing.T) {
			cfg := testConfig(t, toolchain)
			ex := exercise.Descriptor{Name: "Broken1", Directory: "basics", Kind: kind}
			controller, buf := testEnv(t, cfg, ex)

			result, err := controller.Run(ex)
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if result != CompileError {
				t.Errorf("result = %v, want %v", result, CompileError)
			}
			if !strings.Contains(buf.String(), "something is not quite right") {
				t.Errorf("captured stderr not surfaced, output:\n%s", buf.String())
			}
			if _, err := os.Stat(sentinel); !os.IsNotExist(err) {
				t.Error("execution strategy ran despite a failed build")
			}
		})
	}
}

func TestRun_ToolchainMissing_IsErrorNotCompileError(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "no-such-ghc"))
	ex := exercise.Descriptor{Name: "Types1", Directory: "types", Kind: exercise.Compiled()}
	controller, _ := testEnv(t, cfg, ex)

	_, err := controller.Run(ex)
	if err == nil {
		t.Fatal("expected an error for a missing toolchain")
	}
	if !strings.Contains(err.Error(), "spawning toolchain") {
		t.Errorf("unexpected error: %v", err)
	}
}

// =============================================================================
// CompileOnly
// =============================================================================

func TestRun_CompileOnly_Success(t *testing.T) {
	scratch := t.TempDir()
	toolchain, invocations := fakeToolchain(t, scratch, "", 0)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{Name: "Types1", Directory: "types", Kind: exercise.Compiled()}
	controller, buf := testEnv(t, cfg, ex)

	result, err := controller.Run(ex)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result != RunSuccess {
		t.Errorf("result = %v, want %v", result, RunSuccess)
	}
	if !strings.Contains(buf.String(), "Successfully compiled Types1") {
		t.Errorf("missing compile-success message, output:\n%s", buf.String())
	}
	if n := countLines(t, invocations); n != 1 {
		t.Errorf("toolchain invoked %d times, want 1", n)
	}

	// The compile-only plan must not request a binary.
	data, _ := os.ReadFile(invocations)
	if strings.Contains(string(data), "-o ") {
		t.Errorf("compile-only build passed an output-binary flag: %s", data)
	}
}

// =============================================================================
// UnitTests
// =============================================================================

func TestRun_UnitTests(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		want       RunResult
		wantOutput []string
	}{
		{
			name:    "passing_tests",
			payload: "exit 0\n",
			want:    RunSuccess,
			wantOutput: []string{
				"Tests passed for Functions2!",
			},
		},
		{
			name:    "failing_tests_surface_both_streams",
			payload: "echo 'expected 7, got 8'\necho 'assertion failed' >&2\nexit 1\n",
			want:    TestFailed,
			wantOutput: []string{
				"Tests failed for Functions2:",
				"assertion failed",
				"expected 7, got 8",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scratch := t.TempDir()
			payload := writeScript(t, scratch, "payload.sh", tt.payload)
			toolchain, _ := fakeToolchain(t, scratch, payload, 0)
			cfg := testConfig(t, toolchain)
			ex := exercise.Descriptor{Name: "Functions2", Directory: "functions", Kind: exercise.Tested()}
			controller, buf := testEnv(t, cfg, ex)

			result, err := controller.Run(ex)
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if result != tt.want {
				t.Errorf("result = %v, want %v", result, tt.want)
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRun_UnitTests_StderrBeforeStdout(t *testing.T) {
	scratch := t.TempDir()
	payload := writeScript(t, scratch, "payload.sh", "echo OUT\necho ERR >&2\nexit 1\n")
	toolchain, _ := fakeToolchain(t, scratch, payload, 0)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{Name: "Lists1", Directory: "lists", Kind: exercise.Tested()}
	controller, buf := testEnv(t, cfg, ex)

	if _, err := controller.Run(ex); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	out := buf.String()
	if idxErr, idxOut := strings.Index(out, "ERR"), strings.Index(out, "OUT"); idxErr < 0 || idxOut < 0 || idxErr > idxOut {
		t.Errorf("stderr should be reported before stdout:\n%s", out)
	}
}

// =============================================================================
// Executable
// =============================================================================

func TestRun_Executable_SumExercise(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    RunResult
	}{
		{
			name:    "correct_sum",
			payload: "read a\nread b\necho $((a + b))\n",
			want:    RunSuccess,
		},
		{
			name:    "wrong_sum",
			payload: "read a\nread b\necho 8\n",
			want:    TestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scratch := t.TempDir()
			payload := writeScript(t, scratch, "payload.sh", tt.payload)
			toolchain, _ := fakeToolchain(t, scratch, payload, 0)
			cfg := testConfig(t, toolchain)
			ex := exercise.Descriptor{
				Name:      "IO2",
				Directory: "io",
				Kind:      exercise.Interactive([]string{"3", "4"}, exercise.ExpectLines("7")),
			}
			controller, buf := testEnv(t, cfg, ex)

			result, err := controller.Run(ex)
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if result != tt.want {
				t.Errorf("result = %v, want %v", result, tt.want)
			}
			if !strings.Contains(buf.String(), "haskellings exec IO2") {
				t.Errorf("re-run hint missing:\n%s", buf.String())
			}
		})
	}
}

func TestRun_Executable_NonzeroExit(t *testing.T) {
	scratch := t.TempDir()
	payload := writeScript(t, scratch, "payload.sh", "echo partial\necho crash >&2\nexit 2\n")
	toolchain, _ := fakeToolchain(t, scratch, payload, 0)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{
		Name:      "IO1",
		Directory: "io",
		Kind:      exercise.Interactive(nil, exercise.AnyOutput()),
	}
	controller, buf := testEnv(t, cfg, ex)

	result, err := controller.Run(ex)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result != TestFailed {
		t.Errorf("result = %v, want %v", result, TestFailed)
	}
	for _, want := range []string{"partial", "crash", "haskellings exec IO1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRun_Executable_EmptyOutput(t *testing.T) {
	tests := []struct {
		name  string
		check exercise.OutputPredicate
		want  RunResult
	}{
		{"predicate_accepts_empty", exercise.ExpectLines(), RunSuccess},
		{"predicate_rejects_empty", exercise.ExpectLines("something"), TestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scratch := t.TempDir()
			payload := writeScript(t, scratch, "payload.sh", "exit 0\n")
			toolchain, _ := fakeToolchain(t, scratch, payload, 0)
			cfg := testConfig(t, toolchain)
			ex := exercise.Descriptor{
				Name:      "Quiet1",
				Directory: "io",
				Kind:      exercise.Interactive(nil, tt.check),
			}
			controller, _ := testEnv(t, cfg, ex)

			result, err := controller.Run(ex)
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if result != tt.want {
				t.Errorf("result = %v, want %v", result, tt.want)
			}
		})
	}
}

// A child that floods stdout before exiting must not hang the pipeline.
func TestRun_Executable_LargeOutputDoesNotDeadlock(t *testing.T) {
	scratch := t.TempDir()
	// ~99KB of stdout, comfortably past a 64KB pipe buffer.
	payload := writeScript(t, scratch, "payload.sh",
		"i=0\nwhile [ $i -lt 3000 ]; do\n  echo 'xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx'\n  i=$((i+1))\ndone\nexit 0\n")
	toolchain, _ := fakeToolchain(t, scratch, payload, 0)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{
		Name:      "Flood1",
		Directory: "io",
		Kind: exercise.Interactive(nil, func(lines []string) bool {
			return len(lines) == 3000
		}),
	}
	controller, _ := testEnv(t, cfg, ex)

	done := make(chan RunResult, 1)
	go func() {
		result, err := controller.Run(ex)
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
		done <- result
	}()

	select {
	case result := <-done:
		if result != RunSuccess {
			t.Errorf("result = %v, want %v", result, RunSuccess)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline deadlocked on large child output")
	}
}

// Child closes stdin immediately; writing inputs must not fail the run.
func TestRun_Executable_ChildClosesStdinEarly(t *testing.T) {
	scratch := t.TempDir()
	payload := writeScript(t, scratch, "payload.sh", "exec 0<&-\necho done\nexit 0\n")
	toolchain, _ := fakeToolchain(t, scratch, payload, 0)
	cfg := testConfig(t, toolchain)

	inputs := make([]string, 200)
	for i := range inputs {
		inputs[i] = strings.Repeat("y", 1024)
	}

	ex := exercise.Descriptor{
		Name:      "Deaf1",
		Directory: "io",
		Kind:      exercise.Interactive(inputs, exercise.AnyOutput()),
	}
	controller, _ := testEnv(t, cfg, ex)

	result, err := controller.Run(ex)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result != RunSuccess {
		t.Errorf("result = %v, want %v", result, RunSuccess)
	}
}

// =============================================================================
// Idempotence and fire-and-forget
// =============================================================================

func TestRun_Idempotent(t *testing.T) {
	scratch := t.TempDir()
	payload := writeScript(t, scratch, "payload.sh", "exit 0\n")
	toolchain, _ := fakeToolchain(t, scratch, payload, 0)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{Name: "Recursion1", Directory: "recursion", Kind: exercise.Tested()}
	controller, _ := testEnv(t, cfg, ex)

	first, err := controller.Run(ex)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := controller.Run(ex)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first != second {
		t.Errorf("results differ across runs: %v then %v", first, second)
	}
}

func TestRunAndReport_ReportsWithoutResult(t *testing.T) {
	scratch := t.TempDir()
	toolchain, _ := fakeToolchain(t, scratch, "", 1)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{Name: "Broken2", Directory: "basics", Kind: exercise.Compiled()}
	controller, buf := testEnv(t, cfg, ex)

	controller.RunAndReport(ex)

	if !strings.Contains(buf.String(), "Couldn't compile Broken2") {
		t.Errorf("diagnostics suppressed in fire-and-forget mode:\n%s", buf.String())
	}
}

// =============================================================================
// Working-directory scoping
// =============================================================================

func TestRun_RestoresWorkingDirectory(t *testing.T) {
	scratch := t.TempDir()
	toolchain, _ := fakeToolchain(t, scratch, "", 1)
	cfg := testConfig(t, toolchain)
	ex := exercise.Descriptor{Name: "Broken3", Directory: "basics", Kind: exercise.Compiled()}
	controller, _ := testEnv(t, cfg, ex)

	before, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := controller.Run(ex); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Errorf("working directory changed: %s -> %s", before, after)
	}

	// The artifact directory must have been created for the build.
	genDir := filepath.Join(cfg.GeneratedRoot(), ex.Directory)
	if info, err := os.Stat(genDir); err != nil || !info.IsDir() {
		t.Errorf("artifact directory missing: %v", err)
	}
}
