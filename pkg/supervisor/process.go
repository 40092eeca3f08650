package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/flotilla/internal/logger"
	"github.com/marmos91/flotilla/internal/telemetry"
	"github.com/marmos91/flotilla/pkg/config"
)

// Process runs one managed child OS process as a lifecycle component.
//
// Start launches the command in its own process group and blocks until it
// exits, pumping stdout and stderr line-by-line into the structured log.
// On run-context cancellation the configured stop signal is sent to the
// process group and Start returns; Stop then waits out the exit under the
// shared shutdown deadline and escalates to SIGKILL when it expires.
type Process struct {
	cfg config.ProcessConfig

	mu        sync.Mutex
	cmd       *exec.Cmd
	exitCode  int
	exited    bool
	signalled bool

	// waitDone is closed once the process has exited and its output pumps
	// have drained.
	waitDone chan struct{}
}

// NewProcess creates a process component from its configuration. The
// process is not started until the fleet runs.
func NewProcess(cfg config.ProcessConfig) *Process {
	if cfg.StopSignal == "" {
		cfg.StopSignal = "TERM"
	}
	return &Process{
		cfg:      cfg,
		waitDone: make(chan struct{}),
	}
}

// Start launches the child process and blocks until it exits or the run
// context is cancelled, whichever comes first.
//
// Returns nil for a clean exit, ctx.Err() when the run was cancelled (the
// stop signal is sent before returning; the exit itself is reaped by Stop),
// and a wrapped exit error otherwise.
func (p *Process) Start(ctx context.Context) error {
	cmd := buildCommand(p.cfg)
	cmd.Env = mergedEnv(p.cfg.Env)
	if p.cfg.Dir != "" {
		cmd.Dir = p.cfg.Dir
	}
	setProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	spawnCtx, spawnSpan := telemetry.StartProcessSpawnSpan(ctx, p.cfg.Name, p.cfg.Command)
	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("failed to start process: %w", err)
		telemetry.RecordError(spawnCtx, err)
		spawnSpan.End()
		return err
	}
	spawnSpan.SetAttributes(telemetry.ProcessPID(cmd.Process.Pid))
	spawnSpan.End()

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	logger.Info("Process started",
		logger.Component(p.cfg.Name),
		logger.PID(cmd.Process.Pid),
		"command", p.cfg.Command,
	)

	waitCtx, waitSpan := telemetry.StartProcessWaitSpan(ctx, p.cfg.Name, cmd.Process.Pid)
	defer waitSpan.End()

	// One goroutine per pipe, both awaited before Wait.
	var pumps errgroup.Group
	pumps.Go(func() error {
		p.pumpOutput(stdout, "stdout")
		return nil
	})
	pumps.Go(func() error {
		p.pumpOutput(stderr, "stderr")
		return nil
	})

	waitCh := make(chan error, 1)
	go func() {
		_ = pumps.Wait()
		err := cmd.Wait()

		p.mu.Lock()
		p.exited = true
		p.exitCode = cmd.ProcessState.ExitCode()
		p.mu.Unlock()

		close(p.waitDone)
		waitCh <- err
	}()

	select {
	case <-ctx.Done():
		// Graceful stop: signal the process group and return immediately.
		// A child that ignores the signal must not hold the fleet's run
		// phase open; Stop owns the deadline-bounded wait and the SIGKILL
		// escalation, and the wait goroutine keeps draining output until
		// the process actually exits.
		p.signalStop()
		waitSpan.SetAttributes(telemetry.ProcessSignal(p.cfg.StopSignal))
		return ctx.Err()

	case err := <-waitCh:
		code := p.exitCodeLocked()
		waitSpan.SetAttributes(telemetry.ProcessExitCode(code))
		if p.wasSignalled() {
			// Exited in response to our stop signal.
			return ctx.Err()
		}
		if err != nil {
			logger.Info("Process exited with failure",
				logger.Component(p.cfg.Name),
				logger.ExitCode(code),
			)
			err = fmt.Errorf("process %q: %w", p.cfg.Name, err)
			telemetry.RecordError(waitCtx, err)
			return err
		}
		logger.Info("Process exited",
			logger.Component(p.cfg.Name),
			logger.ExitCode(code),
		)
		return nil
	}
}

// Stop waits for the process to exit within ctx's deadline, sending the
// configured stop signal first if the run context has not already done so.
// At the deadline the whole process group is killed.
func (p *Process) Stop(ctx context.Context) error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()

	if cmd == nil {
		// Never started.
		return nil
	}

	p.signalStop()

	select {
	case <-p.waitDone:
		if p.wasSignalled() {
			logger.Info("Process stopped",
				logger.Component(p.cfg.Name),
				logger.ExitCode(p.exitCodeLocked()),
			)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Warn("Process did not stop before deadline, killing process group",
		logger.Component(p.cfg.Name),
		logger.PID(cmd.Process.Pid),
	)
	if err := killGroup(cmd.Process); err != nil {
		return fmt.Errorf("kill process group: %w", err)
	}

	// SIGKILL cannot be ignored; the wait goroutine unblocks promptly.
	select {
	case <-p.waitDone:
	case <-time.After(time.Second):
	}

	return fmt.Errorf("process %q did not stop before deadline: %w", p.cfg.Name, ctx.Err())
}

// PID returns the child process ID, or 0 before the process starts.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// ExitCode returns the process exit code and whether it has exited.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode, p.exited
}

// signalStop sends the configured stop signal to the process group exactly
// once.
func (p *Process) signalStop() {
	p.mu.Lock()
	cmd := p.cmd
	if cmd == nil || p.signalled || p.exited {
		p.mu.Unlock()
		return
	}
	p.signalled = true
	p.mu.Unlock()

	logger.Debug("Sending stop signal to process",
		logger.Component(p.cfg.Name),
		logger.PID(cmd.Process.Pid),
		logger.Signal(p.cfg.StopSignal),
	)
	if err := sendStopSignal(cmd.Process, p.cfg.StopSignal); err != nil {
		logger.Warn("Failed to signal process",
			logger.Component(p.cfg.Name),
			logger.PID(cmd.Process.Pid),
			"error", err,
		)
	}
}

func (p *Process) wasSignalled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signalled
}

func (p *Process) exitCodeLocked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// pumpOutput forwards one output stream into the structured log, one line
// per entry, tagged with the process name and stream.
func (p *Process) pumpOutput(r io.Reader, stream string) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		logger.Info(scanner.Text(),
			logger.Component(p.cfg.Name),
			logger.Stream(stream),
		)
	}
}

// buildCommand creates an exec.Cmd from the process configuration. Explicit
// args bypass the shell; bare commands go through "sh -c" when they contain
// shell metacharacters.
func buildCommand(cfg config.ProcessConfig) *exec.Cmd {
	if len(cfg.Args) > 0 {
		return exec.Command(cfg.Command, cfg.Args...)
	}

	if strings.ContainsAny(cfg.Command, "&|;<>$*?()'\"") {
		return exec.Command("sh", "-c", cfg.Command)
	}

	parts := strings.Fields(cfg.Command)
	if len(parts) == 0 {
		return exec.Command("sh", "-c", cfg.Command)
	}
	return exec.Command(parts[0], parts[1:]...)
}

// mergedEnv appends the configured variables to the supervisor environment
// in sorted key order, overriding duplicates.
func mergedEnv(extra map[string]string) []string {
	env := os.Environ()
	if len(extra) == 0 {
		return env
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
