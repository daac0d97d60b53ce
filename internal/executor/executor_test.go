package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript drops an executable shell script named name into dir.
func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

// scriptEnv returns an environment whose PATH holds binDir followed by the
// system directories the scripts need for sh and env.
func scriptEnv(binDir string) []string {
	return []string{"PATH=" + binDir + string(os.PathListSeparator) + "/usr/bin" + string(os.PathListSeparator) + "/bin"}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
}

func TestRunCapturesStdoutAndStderr(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `echo "out:$1"; echo "err:$2" 1>&2`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := New(false).Run(ctx, Request{Binary: "fake", Args: []string{"a b", "c"}, Env: scriptEnv(bin)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 || !res.Success() {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
	if res.Stdout != "out:a b\n" {
		t.Fatalf("stdout: %q", res.Stdout)
	}
	if res.Stderr != "err:c\n" {
		t.Fatalf("stderr: %q", res.Stderr)
	}
}

func TestRunNonZeroExitIsData(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `echo "no such file" 1>&2; exit 3`)

	res, err := New(false).Run(context.Background(), Request{Binary: "fake", Env: scriptEnv(bin)})
	if err != nil {
		t.Fatalf("non-zero exit should not be an error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit 3, got %d", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "no such file") {
		t.Fatalf("stderr: %q", res.Stderr)
	}
}

func TestRunArgumentsAreNotShellExpanded(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `for a in "$@"; do echo "[$a]"; done`)

	args := []string{"$HOME", "*.png", "a;b", "x && y"}
	res, err := New(false).Run(context.Background(), Request{Binary: "fake", Args: args, Env: scriptEnv(bin)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "[$HOME]\n[*.png]\n[a;b]\n[x && y]\n"
	if res.Stdout != want {
		t.Fatalf("expected %q got %q", want, res.Stdout)
	}
}

func TestRunChildSeesOnlyPath(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `env`)
	t.Setenv("MAGICK_SECRET_TOKEN", "hunter2")

	env := append(scriptEnv(bin), "MAGICK_SECRET_TOKEN=hunter2", "HOME=/root")
	res, err := New(false).Run(context.Background(), Request{Binary: "fake", Env: SanitizedEnv(env)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if line == "" {
			continue
		}
		k, _, _ := strings.Cut(line, "=")
		// some shells export PWD and SHLVL on their own
		if k != "PATH" && k != "PWD" && k != "SHLVL" && k != "_" {
			t.Fatalf("child saw unexpected variable %q in %q", k, res.Stdout)
		}
	}
	if strings.Contains(res.Stdout, "hunter2") {
		t.Fatalf("secret leaked into child: %q", res.Stdout)
	}
}

func TestRunNilEnvUsesSanitizedProcessEnv(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `echo "tok=$MAGICK_SECRET_TOKEN"`)
	t.Setenv("PATH", bin+string(os.PathListSeparator)+"/usr/bin"+string(os.PathListSeparator)+"/bin")
	t.Setenv("MAGICK_SECRET_TOKEN", "hunter2")

	res, err := New(false).Run(context.Background(), Request{Binary: "fake"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout != "tok=\n" {
		t.Fatalf("expected empty token, got %q", res.Stdout)
	}
}

func TestRunWorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `ls`)
	work := t.TempDir()
	if err := os.WriteFile(filepath.Join(work, "in.png"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := New(false).Run(context.Background(), Request{Binary: "fake", Dir: work, Env: scriptEnv(bin)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "in.png" {
		t.Fatalf("expected listing of workspace, got %q", res.Stdout)
	}
}

func TestRunMissingBinaryIsSpawnError(t *testing.T) {
	_, err := New(false).Run(context.Background(), Request{Binary: "definitely-not-installed", Env: scriptEnv(t.TempDir())})
	var se *SpawnError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain, got %v", err)
	}
}

func TestRunEmptyEnvFindsNothing(t *testing.T) {
	_, err := New(false).Run(context.Background(), Request{Binary: "sh", Env: []string{}})
	var se *SpawnError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpawnError with empty PATH, got %v", err)
	}
}

func TestRunBadWorkspace(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := New(false).Run(context.Background(), Request{Binary: "sh", Dir: missing})
	var we *WorkspaceError
	if !errors.As(err, &we) || we.Dir != missing {
		t.Fatalf("expected WorkspaceError for %s, got %v", missing, err)
	}

	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = New(false).Run(context.Background(), Request{Binary: "sh", Dir: file})
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestRunContextCancelled(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	res, err := New(false).Run(ctx, Request{Binary: "fake", Env: scriptEnv(bin)})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if res.ExitCode == 0 {
		t.Fatalf("interrupted run must not report success")
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Fatalf("process was not killed on timeout, returned after %s", d)
	}
}

func TestRunContextCancelledKillsDescendants(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	// the grandchild inherits stdout and would keep Wait blocked if only sh died
	writeScript(t, bin, "fake", "sleep 5 &\nsleep 5\necho done")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	res, err := New(false).Run(ctx, Request{Binary: "fake", Env: scriptEnv(bin)})
	if !errors.Is(err, context.DeadlineExceeded) || !strings.Contains(err.Error(), "command interrupted") {
		t.Fatalf("expected interrupted error, got %v", err)
	}
	if strings.Contains(res.Stdout, "done") {
		t.Fatalf("script kept running after cancellation: %q", res.Stdout)
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Fatalf("Run blocked on descendants for %s", d)
	}
}

func TestDryRun(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	writeScript(t, bin, "fake", `touch should-not-exist`)
	work := t.TempDir()

	res, err := New(true).Run(context.Background(), Request{Binary: "fake", Args: []string{"a b"}, Dir: work, Env: scriptEnv(bin)})
	if err != nil {
		t.Fatalf("dry-run should not error: %v", err)
	}
	if !strings.Contains(res.Stdout, "dry-run:") || !strings.Contains(res.Stdout, "'a b'") {
		t.Fatalf("expected dry-run message, got: %q", res.Stdout)
	}
	if _, err := os.Stat(filepath.Join(work, "should-not-exist")); err == nil {
		t.Fatalf("dry-run must not execute the command")
	}
}
