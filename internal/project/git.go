package project

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// gitTimeout bounds each git invocation.
const gitTimeout = 5 * time.Second

// GitInfo describes the git checkout a directory belongs to.
type GitInfo struct {
	Root   string
	Remote string
	// Repo is the normalized "owner/name" of a GitHub origin, empty otherwise.
	Repo string
}

func runGit(ctx context.Context, dir string, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	s := strings.TrimSpace(string(out))
	return s, s != ""
}

// DetectGit reports the git root and origin of dir. It returns nil when dir
// is not inside a git work tree or git is not installed.
func DetectGit(ctx context.Context, dir string) *GitInfo {
	if dir == "" {
		dir = "."
	}
	root, ok := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if !ok {
		return nil
	}
	// Resolve symlinked temp dirs such as /private/var on macOS.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	info := &GitInfo{Root: root}
	if remote, ok := runGit(ctx, root, "config", "--get", "remote.origin.url"); ok {
		info.Remote = remote
		info.Repo, _ = NormalizeGitHubRemote(remote)
	}
	return info
}

var githubRemotePrefixes = []string{
	"git@github.com:",
	"ssh://git@github.com/",
	"https://github.com/",
}

// NormalizeGitHubRemote turns a GitHub remote URL into "owner/repo".
func NormalizeGitHubRemote(remote string) (string, bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(remote), ".git")

	var remainder string
	matched := false
	for _, prefix := range githubRemotePrefixes {
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			remainder = rest
			matched = true
			break
		}
	}
	if !matched {
		return "", false
	}

	parts := strings.Split(remainder, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}
