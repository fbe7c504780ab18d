// Package command runs external build-tool processes and captures their output
// line by line.
//
// Callers depend on the [Runner] interface so that output parsers can be tested
// against captured fixture text without starting a process:
//
//	lines, err := runner.Run(ctx, command.New("mvn", "dependency:tree"), projectDir)
//
// [OSRunner] is the production implementation. It enforces no timeout of its
// own: a hung child process blocks the run until ctx is cancelled (for example
// by SIGINT), at which point the process is killed.
package command

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depscan/pkg/errors"
)

// Command is a program and its arguments.
type Command struct {
	Name string
	Args []string
}

// New returns a command for name with args.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// With returns a copy of c with extra arguments appended.
func (c Command) With(args ...string) Command {
	out := Command{Name: c.Name, Args: make([]string, 0, len(c.Args)+len(args))}
	out.Args = append(out.Args, c.Args...)
	out.Args = append(out.Args, args...)
	return out
}

// String renders the command line with arguments separated by spaces.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner runs a command in a working directory and returns its combined
// output as an ordered sequence of lines.
type Runner interface {
	Run(ctx context.Context, cmd Command, dir string) ([]string, error)
}

// OSRunner runs commands as child processes.
type OSRunner struct {
	// Logger receives each output line at debug level. Nil disables echoing.
	Logger *log.Logger
}

// NewOSRunner returns a runner that echoes output to logger.
func NewOSRunner(logger *log.Logger) *OSRunner {
	return &OSRunner{Logger: logger}
}

// Run starts cmd in dir and waits for it. Stdout and stderr are merged in
// arrival order. A non-zero exit status is returned as a COMMAND_FAILED error
// wrapping an [errors.ExitError] that carries the captured output.
func (r *OSRunner) Run(ctx context.Context, cmd Command, dir string) ([]string, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = dir

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	var (
		lines   []string
		readErr error
		wg      sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Lines are unbounded: dependency trees can carry very long lines.
		br := bufio.NewReader(pr)
		for {
			raw, err := br.ReadString('\n')
			if raw != "" {
				line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
				lines = append(lines, line)
				if r.Logger != nil {
					r.Logger.Debug(line)
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr = err
					// Keep draining so the child never blocks on write.
					_, _ = io.Copy(io.Discard, pr)
				}
				return
			}
		}
	}()

	if err := c.Start(); err != nil {
		pw.Close()
		wg.Wait()
		return nil, errors.Wrap(errors.ErrCodeCommandFailed,
			&errors.ExitError{Command: cmd.String(), ExitCode: -1}, "failed to start %s", cmd.Name)
	}
	err := c.Wait()
	pw.Close()
	wg.Wait()

	if ctx.Err() != nil {
		return lines, ctx.Err()
	}
	if err == nil && readErr != nil {
		return lines, errors.Wrap(errors.ErrCodeIO, readErr, "failed to read the output of %s", cmd.Name)
	}
	if err != nil {
		code := -1
		if ee, ok := err.(*exec.ExitError); ok {
			code = ee.ExitCode()
		}
		return lines, errors.Wrap(errors.ErrCodeCommandFailed,
			&errors.ExitError{Command: cmd.String(), ExitCode: code, Output: lines}, "%s failed in %s", cmd.Name, dir)
	}
	return lines, nil
}

var _ Runner = (*OSRunner)(nil)

// Recorder is a Runner that returns canned output and records every call.
// It is meant for tests of code that drives external commands.
type Recorder struct {
	mu      sync.Mutex
	Calls   []Call
	Outputs map[string][]string // keyed by Command.Name + first argument
	Err     map[string]error
}

// Call is one recorded invocation.
type Call struct {
	Command Command
	Dir     string
}

// Run records the call and returns the output registered under its key.
func (r *Recorder) Run(ctx context.Context, cmd Command, dir string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, Call{Command: cmd, Dir: dir})
	key := Summary(cmd)
	if err, ok := r.Err[key]; ok {
		return r.Outputs[key], err
	}
	return r.Outputs[key], nil
}

// Summary returns the program name and its first argument that does not
// start with "-", e.g. "mvn dependency:tree". A Recorder keys canned output
// by it.
func Summary(cmd Command) string {
	for _, a := range cmd.Args {
		if !strings.HasPrefix(a, "-") {
			return cmd.Name + " " + a
		}
	}
	return cmd.Name
}

var _ Runner = (*Recorder)(nil)
