// Package gitx is the thin shell boundary to the version-control command.
// It runs git, inspects exit codes and output, and reports results; it
// holds no state and defines no timeout of its own — callers bound
// execution through the context.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// hashRe matches tokens that look like commit hashes.
var hashRe = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// Client runs git commands in a fixed working directory.
type Client struct {
	// Dir is the repository working directory.
	Dir string
	// Command is the git executable name (default "git").
	Command string
}

// New returns a Client for dir.
func New(dir string) *Client {
	return &Client{Dir: dir, Command: "git"}
}

// run executes one git invocation and returns trimmed stdout.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	command := c.Command
	if command == "" {
		command = "git"
	}
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = c.Dir
	out, err := cmd.Output()
	return strings.TrimSpace(string(out)), err
}

// LooksLikeHash reports whether token has the shape of a commit hash.
func LooksLikeHash(token string) bool {
	return hashRe.MatchString(strings.ToLower(token))
}

// ObjectType returns the git object type for hash ("commit", "blob",
// "tree", "tag"), or an error when the hash resolves to nothing.
func (c *Client) ObjectType(ctx context.Context, hash string) (string, error) {
	out, err := c.run(ctx, "cat-file", "-t", hash)
	if err != nil {
		return "", fmt.Errorf("cat-file %s: %w", hash, err)
	}
	return out, nil
}

// IsCommit reports whether hash resolves to a commit object.
func (c *Client) IsCommit(ctx context.Context, hash string) bool {
	typ, err := c.ObjectType(ctx, hash)
	return err == nil && typ == "commit"
}

// IsIgnored reports whether path is matched by the repository's ignore
// rules. check-ignore exits 0 for ignored, 1 for not ignored; both are
// answers, not failures.
func (c *Client) IsIgnored(ctx context.Context, path string) bool {
	_, err := c.run(ctx, "check-ignore", "-q", path)
	return err == nil
}

// Stage adds path to the index.
func (c *Client) Stage(ctx context.Context, path string) error {
	if _, err := c.run(ctx, "add", path); err != nil {
		return fmt.Errorf("git add %s: %w", path, err)
	}
	return nil
}

// Commit records the staged changes with message. An empty index is
// surfaced as an error by git itself.
func (c *Client) Commit(ctx context.Context, message string) error {
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}
