package git

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PullRequest represents a GitHub pull request.
type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Branch string `json:"headRefName"`
	URL    string `json:"url"`
}

// ReviewEvent is the verdict submitted with a PR review.
type ReviewEvent string

const (
	ReviewApprove        ReviewEvent = "APPROVE"
	ReviewComment        ReviewEvent = "COMMENT"
	ReviewRequestChanges ReviewEvent = "REQUEST_CHANGES"
)

// GitHubClient wraps the gh CLI for the pull-request operations a review
// needs: fetching the diff and submitting the verdict.
type GitHubClient interface {
	PRView(repoPath string, number int) (*PullRequest, error)
	PRDiff(repoPath string, number int) (string, error)
	SubmitReview(repoPath string, number int, event ReviewEvent, body string) error
}

// RealGitHubClient implements GitHubClient using the gh CLI.
type RealGitHubClient struct{}

// NewGitHubClient returns a new RealGitHubClient.
func NewGitHubClient() *RealGitHubClient {
	return &RealGitHubClient{}
}

func ghCmd(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("gh", args...)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("gh %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("gh %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

func (c *RealGitHubClient) PRView(repoPath string, number int) (*PullRequest, error) {
	out, err := ghCmd(repoPath, "pr", "view", strconv.Itoa(number),
		"--json", "number,title,state,headRefName,url",
	)
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if err := json.Unmarshal([]byte(out), &pr); err != nil {
		return nil, fmt.Errorf("parse PR: %w", err)
	}
	return &pr, nil
}

func (c *RealGitHubClient) PRDiff(repoPath string, number int) (string, error) {
	// Not trimmed: diff content is positional.
	return ghCmd(repoPath, "pr", "diff", strconv.Itoa(number))
}

func (c *RealGitHubClient) SubmitReview(repoPath string, number int, event ReviewEvent, body string) error {
	args := []string{"pr", "review", strconv.Itoa(number)}
	switch event {
	case ReviewApprove:
		args = append(args, "--approve")
	case ReviewRequestChanges:
		args = append(args, "--request-changes")
	default:
		args = append(args, "--comment")
	}
	if body != "" {
		args = append(args, "--body", body)
	}
	_, err := ghCmd(repoPath, args...)
	return err
}
