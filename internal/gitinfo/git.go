// Package gitinfo reads the state of the repository terraseed runs inside.
// Absence of git or of a repository is not an error: onboarding can target
// a directory that has not been pushed anywhere yet.
package gitinfo

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds each git invocation. Git is local and fast; a hang
// here means something is wrong with the working tree, not the network.
const commandTimeout = 5 * time.Second

// Info describes the enclosing git repository.
type Info struct {
	Root   string
	Branch string
	Remote string
	Dirty  bool
}

// Runner executes one git invocation and returns its trimmed stdout.
type Runner func(ctx context.Context, args ...string) (string, error)

func gitRunner(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Detect returns repository info, or nil when the working directory is not
// inside a git work tree.
func Detect(ctx context.Context) *Info {
	return detect(ctx, gitRunner)
}

func detect(ctx context.Context, run Runner) *Info {
	inside, err := run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || inside != "true" {
		return nil
	}
	info := &Info{}
	info.Root, _ = run(ctx, "rev-parse", "--show-toplevel")
	info.Branch, _ = run(ctx, "branch", "--show-current")
	if remote, err := run(ctx, "remote", "get-url", "origin"); err == nil {
		info.Remote = NormalizeRemote(remote)
	}
	if status, err := run(ctx, "status", "--porcelain"); err == nil {
		info.Dirty = status != ""
	}
	return info
}

// NormalizeRemote rewrites SSH remotes to their HTTPS form and drops the
// .git suffix, matching how build connections report repositories.
func NormalizeRemote(remote string) string {
	remote = strings.TrimSpace(remote)
	if rest, ok := strings.CutPrefix(remote, "ssh://git@"); ok {
		remote = "https://" + rest
	} else if rest, ok := strings.CutPrefix(remote, "git@"); ok {
		if host, path, found := strings.Cut(rest, ":"); found {
			remote = "https://" + host + "/" + path
		}
	}
	return strings.TrimSuffix(remote, ".git")
}
