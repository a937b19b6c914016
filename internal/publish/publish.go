// Package publish commits the generated output tree into a git
// repository, optionally pushing it to a remote. The output directory
// itself becomes the repository root, so the published branch holds
// exactly what a build produced.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Options controls one publish pass.
type Options struct {
	// Dir is the output tree to publish.
	Dir string
	// Branch receives the commits; defaults to "site".
	Branch string
	// Remote is an optional remote URL; push is skipped when empty.
	Remote string
	// Message is the commit message; a timestamped default is used when
	// empty.
	Message string
	Author  string
	Email   string
}

func (o *Options) complete() {
	if o.Branch == "" {
		o.Branch = "site"
	}
	if o.Message == "" {
		o.Message = "Publish site " + time.Now().Format(time.RFC3339)
	}
	if o.Author == "" {
		o.Author = "blogsmith"
	}
	if o.Email == "" {
		o.Email = "blogsmith@localhost"
	}
}

// Publish commits the output tree and returns the new commit hash. An
// unchanged tree produces no commit and an empty hash.
func Publish(ctx context.Context, opts Options) (string, error) {
	opts.complete()

	repo, err := openOrInit(opts.Dir, opts.Branch)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("stage output tree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}
	if status.IsClean() {
		slog.Info("Publish skipped, output tree unchanged", "dir", opts.Dir)
		return "", nil
	}

	hash, err := wt.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{Name: opts.Author, Email: opts.Email, When: time.Now()},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	slog.Info("Published output tree", "commit", hash.String(), "branch", opts.Branch)

	if opts.Remote != "" {
		if err := push(ctx, repo, opts); err != nil {
			return hash.String(), err
		}
	}
	return hash.String(), nil
}

// openOrInit opens the repository at dir, initializing one pointed at
// branch when none exists yet.
func openOrInit(dir, branch string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repository %s: %w", dir, err)
	}

	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("init repository %s: %w", dir, err)
	}
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Storer.SetReference(ref); err != nil {
		return nil, fmt.Errorf("point HEAD at %s: %w", branch, err)
	}
	return repo, nil
}

func push(ctx context.Context, repo *git.Repository, opts Options) error {
	if _, err := repo.Remote(git.DefaultRemoteName); errors.Is(err, git.ErrRemoteNotFound) {
		_, err = repo.CreateRemote(&gitcfg.RemoteConfig{
			Name: git.DefaultRemoteName,
			URLs: []string{opts.Remote},
		})
		if err != nil {
			return fmt.Errorf("create remote: %w", err)
		}
	}

	refspec := gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", opts.Branch, opts.Branch))
	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitcfg.RefSpec{refspec},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s: %w", opts.Branch, err)
	}
	slog.Info("Pushed published branch", "remote", opts.Remote, "branch", opts.Branch)
	return nil
}
