// Package fallback runs an operation through an ordered list of execution
// strategies until one succeeds.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pmtools/vcsbridge/internal/failure"
	"go.uber.org/zap"
)

var ErrNoStrategies = errors.New("no strategies configured")

// Strategy is one way of carrying out an operation.
type Strategy struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// Attempt records the failure of one strategy.
type Attempt struct {
	Strategy string
	Err      error
}

// Run tries each strategy in order, once, and returns the first success.
// When every strategy fails, the last failure is returned with the earlier
// failures appended to its detail.
func Run(ctx context.Context, logger *zap.Logger, op string, strategies ...Strategy) (string, error) {
	if len(strategies) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrNoStrategies)
	}

	attempts := make([]Attempt, 0, len(strategies))
	for _, s := range strategies {
		out, err := s.Run(ctx)
		if err == nil {
			if len(attempts) > 0 {
				logger.Info("fallback strategy succeeded",
					zap.String("operation", op),
					zap.String("strategy", s.Name),
					zap.Int("failed_attempts", len(attempts)))
			}
			return out, nil
		}

		logger.Warn("strategy failed",
			zap.String("operation", op),
			zap.String("strategy", s.Name),
			zap.Error(err))
		attempts = append(attempts, Attempt{Strategy: s.Name, Err: err})
	}

	return "", merge(attempts)
}

func merge(attempts []Attempt) error {
	last := attempts[len(attempts)-1]
	if len(attempts) == 1 {
		return last.Err
	}

	var b strings.Builder
	for _, a := range attempts[:len(attempts)-1] {
		fmt.Fprintf(&b, "%s attempt failed: %s\n", a.Strategy, firstLine(a.Err.Error()))
	}
	earlier := strings.TrimSpace(b.String())

	var fe *failure.Error
	if errors.As(last.Err, &fe) {
		return fe.WithDetail(earlier)
	}
	return fmt.Errorf("%w\n\n%s", last.Err, earlier)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
