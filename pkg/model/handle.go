// Copyright © 2023 One Concern

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oneconcern/datasync/pkg/errors"
)

// ErrInvalidPath signals a target path that is empty, absolute, or
// escapes the repository root.
var ErrInvalidPath = errors.New("invalid repository path")

// RepoHandle identifies a remote data repository and the local working
// copy all datasync operations on this host share for it.
type RepoHandle struct {
	Remote    string
	LocalPath string
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// NewRepoHandle resolves a handle for a remote URL under the given cache root.
//
// The local path is derived deterministically from the normalized remote URL,
// so every caller targeting the same remote converges on the same working
// copy and the same lock marker, whatever process or host it runs in.
func NewRepoHandle(remote, cacheRoot string) (RepoHandle, error) {
	normalized := normalizeRemote(remote)
	if normalized == "" {
		return RepoHandle{}, fmt.Errorf("empty remote repository URL")
	}
	if cacheRoot == "" {
		return RepoHandle{}, fmt.Errorf("empty cache root")
	}
	digest := sha256.Sum256([]byte(normalized))
	dir := fmt.Sprintf("%s-%s", repoSlug(normalized), hex.EncodeToString(digest[:8]))
	return RepoHandle{
		Remote:    remote,
		LocalPath: filepath.Join(cacheRoot, dir),
	}, nil
}

// LockMarkerPath locates the lock marker for this handle.
//
// The marker is a sibling of the working copy, not inside it, so wiping a
// broken working copy never drops an active lock.
func (h RepoHandle) LockMarkerPath() string {
	return h.LocalPath + ".lock"
}

func (h RepoHandle) String() string {
	return h.Remote
}

func normalizeRemote(remote string) string {
	r := strings.TrimSpace(remote)
	r = strings.TrimSuffix(r, "/")
	r = strings.TrimSuffix(r, ".git")
	return r
}

// repoSlug extracts a short human-readable prefix from the remote URL,
// to keep cache directories recognizable next to the digest.
func repoSlug(normalized string) string {
	base := path.Base(strings.ReplaceAll(normalized, ":", "/"))
	slug := unsafePathChars.ReplaceAllString(base, "-")
	slug = strings.Trim(slug, "-.")
	if slug == "" {
		return "repo"
	}
	if len(slug) > 48 {
		slug = slug[:48]
	}
	return slug
}

// ValidateTargetPath rejects paths that are empty, absolute, or escape the
// repository root once cleaned.
func ValidateTargetPath(target string) error {
	if target == "" {
		return ErrInvalidPath.WrapMessage("empty target path")
	}
	if path.IsAbs(target) || filepath.IsAbs(target) {
		return ErrInvalidPath.WrapMessage("target path %q must be relative", target)
	}
	clean := path.Clean(filepath.ToSlash(target))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return ErrInvalidPath.WrapMessage("target path %q escapes the repository root", target)
	}
	if clean == "." {
		return ErrInvalidPath.WrapMessage("target path %q does not name a file", target)
	}
	return nil
}
