// Copyright © 2023 One Concern

package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes one engine command in a working directory.
// It is an interface so tests can script command outcomes.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (stdout string, err error)
}

// CommandError reports a failed engine command with its captured stderr.
type CommandError struct {
	Args     []string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type execRunner struct{}

// NewExecRunner runs git commands through os/exec
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		cmdErr := &CommandError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), cmdErr
	}
	return stdout.String(), nil
}

// Available reports whether the git command can be found in PATH
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}
