//go:build e2e && unix

package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

var binPath = "checkable_e2e"

const (
	KeyEnter = "\r"
	KeyCtrlC = "\x03"
	KeySpace = " "
	KeyDown  = "j"
	KeyRight = "l"
	KeyForce = "f"
	KeyClear = "c"
	KeySave  = "s"
	KeyHelp  = "?"
	KeyLog   = "L"
	KeyQuit  = "q"
)

const (
	readyTimeout  = 5 * time.Second
	expectTimeout = 3 * time.Second
	pollInterval  = 25 * time.Millisecond
)

// ansiRe strips CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// TUITestFramework drives the gallery binary through a pty and records
// everything it draws
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	cmd       *exec.Cmd
	workspace string
	exited    chan struct{}
	exitErr   error

	mu  sync.Mutex
	out bytes.Buffer
}

// NewTUITest creates a driver for t
func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{t: t}
}

// StartApp launches the binary on a 120x40 pty with HOME inside the workspace
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace,
		"XDG_CONFIG_HOME="+filepath.Join(tf.workspace, ".config"),
		"CHECKABLE_E2E_TEST=1",
	)

	f, err := pty.StartWithSize(tf.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", binPath, err)
	}
	tf.pty = f

	tf.exited = make(chan struct{})
	go func() {
		tf.exitErr = tf.cmd.Wait()
		close(tf.exited)
	}()
	go tf.record()
	return nil
}

func (tf *TUITestFramework) record() {
	chunk := make([]byte, 8192)
	for {
		n, err := tf.pty.Read(chunk)
		if n > 0 {
			tf.mu.Lock()
			tf.out.Write(chunk[:n])
			tf.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys writes raw keystrokes to the pty
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// Toggle presses space on the focused tile
func (tf *TUITestFramework) Toggle() error { return tf.SendKeys(KeySpace) }

// Enter presses enter on the focused tile
func (tf *TUITestFramework) Enter() error { return tf.SendKeys(KeyEnter) }

// Force toggles the focused tile without animation
func (tf *TUITestFramework) Force() error { return tf.SendKeys(KeyForce) }

// Pick checks a group position, counted from 1
func (tf *TUITestFramework) Pick(position int) error {
	return tf.SendKeys(fmt.Sprintf("%d", position))
}

// Right moves focus one tile to the right
func (tf *TUITestFramework) Right() error { return tf.SendKeys(KeyRight) }

// Down moves focus one row down
func (tf *TUITestFramework) Down() error { return tf.SendKeys(KeyDown) }

// Save writes the state file
func (tf *TUITestFramework) Save() error { return tf.SendKeys(KeySave) }

// ShowLog opens the event log pager
func (tf *TUITestFramework) ShowLog() error { return tf.SendKeys(KeyLog) }

// Quit presses q
func (tf *TUITestFramework) Quit() error { return tf.SendKeys(KeyQuit) }

// SendCtrlC presses ctrl+c
func (tf *TUITestFramework) SendCtrlC() error { return tf.SendKeys(KeyCtrlC) }

// WaitExit waits for the process to end and returns its exit error
func (tf *TUITestFramework) WaitExit(timeout time.Duration) error {
	select {
	case <-tf.exited:
		return tf.exitErr
	case <-time.After(timeout):
		return fmt.Errorf("process still running after %s\n--- tail ---\n%s", timeout, tf.Tail(4096))
	}
}

// Snapshot returns everything drawn so far
func (tf *TUITestFramework) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.out.String()
}

// SnapshotPlain is Snapshot without escape sequences
func (tf *TUITestFramework) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.Snapshot(), "")
}

// Tail returns the last n bytes of plain output
func (tf *TUITestFramework) Tail(n int) string {
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// Mark returns the current output length, for matching only what comes after it
func (tf *TUITestFramework) Mark() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.out.Len()
}

// WaitFor polls pred against the raw output until it holds or timeout passes
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// Ready waits for the marker printed with every frame in e2e mode
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool { return strings.Contains(s, "__READY__") }, readyTimeout)
}

// SeePlain waits for text anywhere in the plain output
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.SeePlainAfter(0, text)
}

// SeePlainAfter waits for text in the plain output written after mark
func (tf *TUITestFramework) SeePlainAfter(mark int, text string) bool {
	tf.t.Helper()
	return tf.ExpectPlainAfter(mark, text) == nil
}

// ExpectPlainAfter is SeePlainAfter returning the output tail on failure
func (tf *TUITestFramework) ExpectPlainAfter(mark int, text string) error {
	tf.t.Helper()
	found := tf.WaitFor(func(s string) bool {
		if mark > len(s) {
			mark = 0
		}
		return strings.Contains(ansiRe.ReplaceAllString(s[mark:], ""), text)
	}, expectTimeout)
	if found {
		return nil
	}
	return fmt.Errorf("%q not drawn\n--- tail ---\n%s", text, tf.Tail(4096))
}

// Cleanup closes the pty, which hangs up the app, and kills it if it lingers
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		select {
		case <-tf.exited:
		case <-time.After(time.Second):
			_ = tf.cmd.Process.Kill()
			<-tf.exited
		}
		tf.cmd = nil
	}
}
