package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cczw2010/chromedevtools/internal/cli"
	"github.com/cczw2010/chromedevtools/internal/config"
	"github.com/cczw2010/chromedevtools/internal/errors"
)

const (
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

var listeningPattern = regexp.MustCompile(`Debugger listening on (wss?://\S+)`)

// Process is a node child process started with the inspector enabled.
type Process struct {
	log            *slog.Logger
	options        *config.Options
	stderrCallback func(string)

	mu        sync.Mutex
	cmd       *exec.Cmd
	closing   bool
	stderrBuf strings.Builder
	exitErr   error

	urlCh  chan string
	exited chan struct{}
}

// NewProcess creates a launcher for options.Script. Nothing is started until
// Start is called.
func NewProcess(log *slog.Logger, options *config.Options) *Process {
	return &Process{
		log:            log.With("component", "node_process"),
		options:        options,
		stderrCallback: options.Stderr,
		urlCh:          make(chan string, 1),
		exited:         make(chan struct{}),
	}
}

// Start spawns node and waits until the inspector reports its websocket URL.
//
// The wait is bounded by ctx and options.HandshakeTimeout. The process is
// killed if Start fails after spawning it. ctx only governs startup; use
// Close to stop the process.
//
// Returns NodeNotFoundError if node cannot be located, ProcessError if node
// exits before the inspector starts, or ConnectionError on spawn failures.
func (p *Process) Start(ctx context.Context) (string, error) {
	if p.options.Script == "" {
		return "", &errors.ConnectionError{Err: stderrors.New("no script to launch")}
	}

	p.log.Info("Starting node", "script", p.options.Script)

	discoverer := cli.NewDiscoverer(&cli.Config{
		NodePath:         p.options.NodePath,
		SkipVersionCheck: p.options.SkipVersionCheck,
		Logger:           p.log,
	})

	nodePath, err := discoverer.Discover(ctx)
	if err != nil {
		return "", fmt.Errorf("discover node: %w", err)
	}

	args := cli.BuildArgs(p.options)
	p.log.Debug("Built command arguments", "args", args)

	//nolint:gosec // G204: launching node with caller-provided arguments is the point
	cmd := exec.Command(nodePath, args...)
	cmd.Env = cli.BuildEnvironment(p.options)
	cmd.Dir = p.options.Cwd
	cmd.Stdout = p.options.Stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		p.log.Error("Failed to start node", "error", err)

		return "", &errors.ConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	p.log.Info("node started", "pid", cmd.Process.Pid)

	go p.watch(stderr)

	timeout := p.options.HandshakeTimeout
	if timeout <= 0 {
		timeout = config.DefaultHandshakeTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case url := <-p.urlCh:
		p.log.Info("Inspector listening", "url", url)

		return url, nil

	case <-p.exited:
		if err := p.Err(); err != nil {
			return "", err
		}

		return "", &errors.ProcessError{Stderr: p.Stderr(), Err: stderrors.New("node exited before the inspector started")}

	case <-timer.C:
		_ = p.Close()

		return "", &errors.ConnectionError{Err: fmt.Errorf("inspector did not start within %s", timeout)}

	case <-ctx.Done():
		_ = p.Close()

		return "", ctx.Err()
	}
}

// watch scans stderr until the pipe closes, then reaps the process.
func (p *Process) watch(stderr io.Reader) {
	defer close(p.exited)

	announced := false

	// Relies on process exit to close the pipe and unblock Scan().
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()

		p.mu.Lock()

		if p.stderrBuf.Len() < maxStderrBufferSize {
			if p.stderrBuf.Len() > 0 {
				p.stderrBuf.WriteString("\n")
			}

			p.stderrBuf.WriteString(line)
		}

		p.mu.Unlock()

		if !announced {
			if m := listeningPattern.FindStringSubmatch(line); m != nil {
				announced = true
				p.urlCh <- m[1]
			}
		}

		if p.stderrCallback != nil {
			p.stderrCallback(line)
		}
	}

	if err := scanner.Err(); err != nil {
		p.log.Debug("Stderr scanner error", "error", err)
	}

	err := p.cmd.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		p.log.Info("node exited successfully")

		return
	}

	if p.closing {
		p.log.Debug("node terminated during shutdown")

		return
	}

	exitCode := 0
	if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
		exitCode = exitErr.ExitCode()
	}

	stderrOutput := cleanStderr(p.stderrBuf.String())

	p.log.Error("node exited with error", "exit_code", exitCode, "stderr", stderrOutput)

	p.exitErr = &errors.ProcessError{
		ExitCode: exitCode,
		Stderr:   stderrOutput,
		Err:      err,
	}
}

// Exited is closed once the process has been reaped.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Err returns the ProcessError of an abnormal exit. It is nil while running,
// after a clean exit and after Close.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitErr
}

// Stderr returns the buffered stderr output with inspector chatter removed.
func (p *Process) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return cleanStderr(p.stderrBuf.String())
}

// Pid returns the process id, or 0 before Start.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

// Close kills the process. It's safe to call Close multiple times or on an
// already-terminated process.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closing = true

	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	select {
	case <-p.exited:
		return nil
	default:
	}

	p.log.Debug("Killing node", "pid", p.cmd.Process.Pid)

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill node (pid %d): %w", p.cmd.Process.Pid, err)
	}

	return nil
}

// inspectorChatter are the stderr lines node prints about the inspector
// itself. They say nothing about why a script failed.
var inspectorChatter = []string{
	"Debugger listening on ",
	"For help, see: https://nodejs.org/",
	"Debugger attached.",
	"Debugger ending on ",
	"Waiting for the debugger to disconnect...",
}

// cleanStderr drops inspector chatter from stderr so the script's own error
// message and stack trace remain.
func cleanStderr(stderr string) string {
	if stderr == "" {
		return ""
	}

	var cleaned strings.Builder

	for line := range strings.SplitSeq(stderr, "\n") {
		if isInspectorChatter(strings.TrimSpace(line)) {
			continue
		}

		if cleaned.Len() > 0 {
			cleaned.WriteString("\n")
		}

		cleaned.WriteString(line)
	}

	return strings.TrimSpace(cleaned.String())
}

func isInspectorChatter(line string) bool {
	for _, prefix := range inspectorChatter {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}
