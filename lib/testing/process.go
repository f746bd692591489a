package testing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
)

// Environment variables used to pass instructions to a helper process.
const (
	EnvHelperMode  = "FSSYNC_TEST_HELPER"
	EnvHelperRoot  = "FSSYNC_TEST_ROOT"
	EnvHelperKey   = "FSSYNC_TEST_KEY"
	EnvHelperCount = "FSSYNC_TEST_COUNT"
)

// Helper modes
const (
	// ModeHold locks the key, prints "acquired", holds the lock until stdin is closed, unlocks and prints "released"
	ModeHold = "hold"
	// ModeLock locks the key, prints "acquired", unlocks and prints "released"
	ModeLock = "lock"
	// ModeWait prints "waiting", waits for the key and prints "returned"
	ModeWait = "wait"
	// ModeExists prints "locked=<bool>"
	ModeExists = "exists"
	// ModeIncrement increments the counter key by one, count times, and prints "done"
	ModeIncrement = "increment"
)

// HelperMain turns the test binary into a helper process if it was started
// by StartHelper. It must be called at the very beginning of TestMain and does
// not return in that case.
func HelperMain() {
	mode := os.Getenv(EnvHelperMode)
	if mode == "" {
		return
	}

	count, _ := strconv.Atoi(os.Getenv(EnvHelperCount))
	if err := runHelper(mode, os.Getenv(EnvHelperRoot), os.Getenv(EnvHelperKey), count); err != nil {
		fmt.Fprintf(os.Stderr, "helper %s failed: %v\n", mode, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runHelper(mode, root, key string, count int) error {
	mapper := pathmap.NewPathMapper(root)
	locks := lockmgr.NewLockManager(mapper)

	switch mode {
	case ModeHold:
		if err := locks.Lock(key); err != nil {
			return err
		}
		fmt.Println("acquired")
		_, _ = io.Copy(io.Discard, os.Stdin)
		if _, err := locks.Unlock(key); err != nil {
			return err
		}
		fmt.Println("released")
	case ModeLock:
		if err := locks.Lock(key); err != nil {
			return err
		}
		fmt.Println("acquired")
		if _, err := locks.Unlock(key); err != nil {
			return err
		}
		fmt.Println("released")
	case ModeWait:
		fmt.Println("waiting")
		if err := locks.Wait(key); err != nil {
			return err
		}
		fmt.Println("returned")
	case ModeExists:
		locked, err := locks.Exists(key)
		if err != nil {
			return err
		}
		fmt.Printf("locked=%t\n", locked)
	case ModeIncrement:
		store := counter.NewCounterStore(mapper)
		for i := 0; i < count; i++ {
			if _, err := store.Increment(key, 1); err != nil {
				return err
			}
		}
		fmt.Println("done")
	default:
		return fmt.Errorf("unknown helper mode %q", mode)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper process handle
// --------------------------------------------------------------------------

// Helper is a running helper process.
type Helper struct {
	t     testing.TB
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	done  chan error
}

// StartHelper starts the current test binary as a helper process in the given mode.
// The process is killed when the test ends.
func StartHelper(t testing.TB, mode, root, key string, count int) *Helper {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(),
		EnvHelperMode+"="+mode,
		EnvHelperRoot+"="+root,
		EnvHelperKey+"="+key,
		EnvHelperCount+"="+strconv.Itoa(count),
	)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("could not start helper %s: %v", mode, err)
	}

	h := &Helper{
		t:     t,
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 16),
		done:  make(chan error, 1),
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			h.lines <- strings.TrimSpace(scanner.Text())
		}
		close(h.lines)
		h.done <- cmd.Wait()
	}()

	t.Cleanup(func() {
		_ = h.stdin.Close()
		_ = h.cmd.Process.Kill()
	})
	return h
}

// Expect fails the test unless the helper prints line within timeout.
func (h *Helper) Expect(line string, timeout time.Duration) {
	h.t.Helper()
	select {
	case got, ok := <-h.lines:
		if !ok {
			h.t.Fatalf("helper exited while waiting for %q", line)
		}
		if got != line {
			h.t.Fatalf("expected helper to print %q, got %q", line, got)
		}
	case <-time.After(timeout):
		h.t.Fatalf("helper did not print %q within %s", line, timeout)
	}
}

// ExpectSilence fails the test if the helper prints anything within d.
func (h *Helper) ExpectSilence(d time.Duration) {
	h.t.Helper()
	select {
	case got, ok := <-h.lines:
		if ok {
			h.t.Fatalf("expected helper to be blocked, but it printed %q", got)
		}
		h.t.Fatalf("expected helper to be blocked, but it exited")
	case <-time.After(d):
	}
}

// Release closes the helper's stdin, which ends a ModeHold helper.
func (h *Helper) Release() {
	_ = h.stdin.Close()
}

// Kill terminates the helper without giving it a chance to clean up.
func (h *Helper) Kill() {
	_ = h.cmd.Process.Kill()
}

// Wait waits for the helper to exit and fails the test on a non zero exit code.
func (h *Helper) Wait(timeout time.Duration) {
	h.t.Helper()
	for {
		select {
		case _, ok := <-h.lines:
			if ok {
				continue
			}
		case <-time.After(timeout):
			h.t.Fatalf("helper did not exit within %s", timeout)
		}
		break
	}

	select {
	case err := <-h.done:
		if err != nil {
			h.t.Fatalf("helper failed: %v", err)
		}
	case <-time.After(timeout):
		h.t.Fatalf("helper did not exit within %s", timeout)
	}
}
