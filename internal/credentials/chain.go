package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/pmtools/vcsbridge/internal/failure"
	"go.uber.org/zap"
)

// Chain is an ordered, lazily evaluated sequence of authentication methods
// for a single network operation.
type Chain struct {
	remote     Remote
	candidates []Candidate
	next       int
	tried      []string

	logger *zap.Logger
}

// Remote returns the parsed remote the chain was built for.
func (c *Chain) Remote() Remote {
	return c.remote
}

// Next returns the next candidate that can be built, or false when the chain
// is exhausted. Candidates that fail to build are skipped.
func (c *Chain) Next(ctx context.Context) (transport.AuthMethod, string, bool) {
	for c.next < len(c.candidates) {
		cand := c.candidates[c.next]
		c.next++

		auth, err := cand.Build(ctx)
		if err != nil {
			c.logger.Debug("credential candidate unavailable",
				zap.String("candidate", cand.Name),
				zap.String("remote", c.remote.URL),
				zap.Error(err))
			continue
		}

		c.tried = append(c.tried, cand.Name)
		return auth, cand.Name, true
	}

	return nil, "", false
}

// Tried lists the names of the candidates handed out so far.
func (c *Chain) Tried() []string {
	return c.tried
}

// Do calls attempt with each candidate until it succeeds or fails for a
// reason other than authentication. When no candidate can be built, attempt
// runs once without credentials.
func (c *Chain) Do(ctx context.Context, op string, attempt func(auth transport.AuthMethod) error) error {
	var lastErr error
	called := false

	for {
		auth, name, ok := c.Next(ctx)
		if !ok {
			break
		}
		called = true

		err := attempt(auth)
		if err == nil {
			return nil
		}
		if !IsAuthError(err) {
			return err
		}

		c.logger.Info("credential rejected", zap.String("candidate", name), zap.String("remote", c.remote.URL))
		lastErr = err
	}

	if !called {
		err := attempt(nil)
		if err == nil || !IsAuthError(err) {
			return err
		}
		lastErr = err
	}

	return c.Exhausted(op, lastErr)
}

// Exhausted builds the terminal authentication failure of the chain.
func (c *Chain) Exhausted(op string, cause error) *failure.Error {
	detail := fmt.Sprintf("Remote: %s", c.remote.URL)
	if len(c.tried) > 0 {
		detail += fmt.Sprintf("\nTried: %v", c.tried)
	}
	if cause != nil {
		detail += fmt.Sprintf("\nProblem: %v", cause)
	}
	detail += "\n\n" + Guidance

	return &failure.Error{
		Category: failure.CategoryAuthentication,
		Op:       op,
		Message:  fmt.Sprintf("authentication failed for %s", c.remote.URL),
		Detail:   detail,
		Err:      cause,
	}
}

// IsAuthError reports whether a library error means the remote rejected the
// supplied credentials (or demanded some).
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return true
	}
	return failure.Classify(err.Error()) == failure.CategoryAuthentication
}
