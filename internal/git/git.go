// Package git shells out to the git binary for the handful of repository
// facts a diff review needs. Review logic never parses git output directly;
// it goes through Client so tests can substitute a fake.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Client defines the git operations used to assemble a diff review.
// All methods take a path parameter since reviews run against arbitrary
// working copies.
type Client interface {
	RepoRoot(path string) (string, error)
	CurrentBranch(path string) (string, error)
	// Diff returns the unified diff from base to the working tree.
	Diff(path, base string) (string, error)
	IsDirty(path string) (bool, error)
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealClient) RepoRoot(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--show-toplevel")
}

func (c *RealClient) CurrentBranch(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--abbrev-ref", "HEAD")
}

func (c *RealClient) Diff(path, base string) (string, error) {
	out, err := exec.Command("git", "-C", path, "diff", base).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git diff %s: %s", base, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git diff %s: %w", base, err)
	}
	// Not trimmed: diff content is positional.
	return string(out), nil
}

func (c *RealClient) IsDirty(path string) (bool, error) {
	out, err := gitCmd(path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}
