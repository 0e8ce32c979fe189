// Copyright © 2023 One Concern

package vcs

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/errors"
	"github.com/oneconcern/datasync/pkg/model"
)

const (
	defaultAuthorName  = "datasync"
	defaultAuthorEmail = "datasync@oneconcern.com"
)

// GitOption tunes the git engine
type GitOption func(*Git)

// GitRunner overrides the command runner (used by tests)
func GitRunner(runner Runner) GitOption {
	return func(g *Git) {
		if runner != nil {
			g.runner = runner
		}
	}
}

// GitBranch pins operations to a branch instead of the remote HEAD
func GitBranch(branch string) GitOption {
	return func(g *Git) {
		g.branch = branch
	}
}

// GitAuthor sets the identity recorded on published commits
func GitAuthor(name, email string) GitOption {
	return func(g *Git) {
		if name != "" {
			g.authorName = name
		}
		if email != "" {
			g.authorEmail = email
		}
	}
}

// GitLogger sets a logger (defaults to a nop logger)
func GitLogger(logger *zap.Logger) GitOption {
	return func(g *Git) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGit builds an Engine backed by the git command line.
func NewGit(opts ...GitOption) *Git {
	g := &Git{
		runner:      NewExecRunner(),
		authorName:  defaultAuthorName,
		authorEmail: defaultAuthorEmail,
		logger:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(g)
	}
	return g
}

// Git drives the git CLI. Working copies are partial clones with sparse
// checkout enabled, so only the paths an operation touches are ever
// materialized on disk.
type Git struct {
	runner      Runner
	branch      string
	authorName  string
	authorEmail string
	logger      *zap.Logger
}

var _ Engine = &Git{}

func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	g.logger.Debug("git", zap.Strings("args", args), zap.String("dir", dir))
	return g.runner.Run(ctx, dir, args...)
}

func (g *Git) Clone(ctx context.Context, remote, dir string) error {
	args := []string{"clone", "--no-checkout", "--sparse", "--filter=blob:none", "-q"}
	if g.branch != "" {
		args = append(args, "--branch", g.branch)
	}
	args = append(args, remote, dir)
	if _, err := g.run(ctx, "", args...); err != nil {
		return err
	}
	// non-cone patterns so individual files can be added to the sparse set
	if _, err := g.run(ctx, dir, "sparse-checkout", "set", "--no-cone"); err != nil {
		return err
	}
	// populate the index; the sparse set keeps the worktree minimal
	_, err := g.run(ctx, dir, "checkout", "-q")
	return err
}

func (g *Git) Sync(ctx context.Context, dir string) error {
	if _, err := g.run(ctx, dir, "fetch", "-q", "origin"); err != nil {
		return err
	}
	// discard anything a crashed run may have left half-applied
	if _, err := g.run(ctx, dir, "reset", "--hard", "-q", g.remoteRef()); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "clean", "-fdq")
	return err
}

func (g *Git) Checkout(ctx context.Context, dir string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	patterns := make([]string, 0, len(paths))
	for _, p := range paths {
		patterns = append(patterns, "/"+path.Clean(p))
	}
	args := append([]string{"sparse-checkout", "add"}, patterns...)
	if _, err := g.run(ctx, dir, args...); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "checkout", "-q")
	return err
}

func (g *Git) Stage(ctx context.Context, dir string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--sparse", "--"}, paths...)
	_, err := g.run(ctx, dir, args...)
	return err
}

func (g *Git) HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	_, err := g.run(ctx, dir, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
		return true, nil
	}
	return false, err
}

func (g *Git) Commit(ctx context.Context, dir, message string) (string, error) {
	_, err := g.run(ctx, dir,
		"-c", "user.name="+g.authorName,
		"-c", "user.email="+g.authorEmail,
		"commit", "-q", "-m", message)
	if err != nil {
		return "", err
	}
	return g.Head(ctx, dir)
}

func (g *Git) Push(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "push", "-q", "origin", "HEAD")
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && isRejectedPush(cmdErr.Stderr) {
		return ErrRejected.Wrap(err)
	}
	return err
}

func (g *Git) Head(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) HasPath(ctx context.Context, dir, p string) (bool, error) {
	_, err := g.run(ctx, dir, "cat-file", "-e", "HEAD:"+path.Clean(p))
	if err == nil {
		return true, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return false, nil
	}
	return false, err
}

func (g *Git) LastModified(ctx context.Context, dir, p string) (time.Time, bool, error) {
	out, err := g.run(ctx, dir, "log", "-1", "--format=%ct", "--", path.Clean(p))
	if err != nil {
		return time.Time{}, false, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return time.Time{}, false, nil
	}
	epoch, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unexpected commit timestamp %q for %q: %w", out, p, err)
	}
	return time.Unix(epoch, 0).UTC(), true, nil
}

func (g *Git) ListTree(ctx context.Context, dir, subdir string) ([]model.Entry, error) {
	spec := "HEAD"
	prefix := ""
	if cleaned := path.Clean(subdir); cleaned != "." && cleaned != "/" {
		spec = "HEAD:" + cleaned
		prefix = cleaned + "/"
	}
	out, err := g.run(ctx, dir, "ls-tree", spec)
	if err != nil {
		return nil, err
	}
	return parseLsTree(out, prefix)
}

func (g *Git) remoteRef() string {
	if g.branch != "" {
		return "origin/" + g.branch
	}
	return "origin/HEAD"
}

// parseLsTree reads "mode type sha\tname" lines from git ls-tree
func parseLsTree(out, prefix string) ([]model.Entry, error) {
	var entries []model.Entry
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		meta, name, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("unexpected ls-tree line %q", line)
		}
		fields := strings.Fields(meta)
		if len(fields) < 2 {
			return nil, fmt.Errorf("unexpected ls-tree line %q", line)
		}
		entries = append(entries, model.Entry{
			Path:  prefix + name,
			Name:  name,
			IsDir: fields[1] == "tree",
		})
	}
	return entries, nil
}

func isRejectedPush(stderr string) bool {
	for _, marker := range []string{
		"[rejected]",
		"non-fast-forward",
		"fetch first",
		"failed to push some refs",
	} {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
