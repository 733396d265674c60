package git

import (
	"context"
	"os/exec"
	"path"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	gogit "github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"
)

// ErrNoWorkTree is returned by the exec based helpers when the repository is
// not backed by a directory (e.g. an in-memory repository).
const ErrNoWorkTree = errors.Sentinel("repository has no working directory")

type Repo struct {
	repoDir string
	repo    *gogit.Repository
	log     logrus.FieldLogger
}

var _ branches.Repository = (*Repo)(nil)

// OpenRepo opens the repository at repoDir (or one of its parents).
func OpenRepo(repoDir string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(repoDir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, errors.WrapIff(err, "failed to open git repository at %q", repoDir)
	}
	return &Repo{
		repoDir,
		repo,
		logrus.WithFields(logrus.Fields{"repo": path.Base(repoDir)}),
	}, nil
}

// FromGoGit wraps an already opened go-git repository. Repositories without
// a working directory only support the go-git backed operations.
func FromGoGit(repo *gogit.Repository, repoDir string) *Repo {
	name := "<memory>"
	if repoDir != "" {
		name = path.Base(repoDir)
	}
	return &Repo{
		repoDir,
		repo,
		logrus.WithFields(logrus.Fields{"repo": name}),
	}
}

// Git runs git with the given arguments and returns the trimmed stdout.
func (r *Repo) Git(ctx context.Context, args ...string) (string, error) {
	if r.repoDir == "" {
		return "", ErrNoWorkTree
	}
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.repoDir
	out, err := cmd.Output()
	log := r.log.WithField("duration", time.Since(startTime))
	if err != nil {
		stderr := "<no output>"
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			stderr = string(exitError.Stderr)
		}
		log.Debugf("git %s failed: %s: %s", args, err, stderr)
		return strings.TrimSpace(string(out)), errors.Wrapf(err, "git %s", args[0])
	}

	log.Debugf("git %s", args)
	return strings.TrimSpace(string(out)), nil
}

// GitDir returns the path of the .git directory.
func (r *Repo) GitDir(ctx context.Context) (string, error) {
	dir, err := r.Git(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", errors.Wrap(err, "failed to determine git directory")
	}
	return dir, nil
}

// CurrentBranchName returns the name of the current branch.
// The name is returned in "short" format -- i.e., without the "refs/heads/" prefix.
// IMPORTANT: This function will return an error if the repository is currently
// in a detached-head state.
func (r *Repo) CurrentBranchName() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", errors.Wrap(err, "failed to read HEAD")
	}
	if !ref.Name().IsBranch() {
		return "", errors.New("failed to determine current branch (are you in detached HEAD?)")
	}
	return ref.Name().Short(), nil
}

// ConfigValues returns every value of the given git config key
// (e.g. section "stack", key "protected-branch").
func (r *Repo) ConfigValues(section, key string) ([]string, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read git config")
	}
	if cfg.Raw == nil || !cfg.Raw.HasSection(section) {
		return nil, nil
	}
	return cfg.Raw.Section(section).OptionAll(key), nil
}
