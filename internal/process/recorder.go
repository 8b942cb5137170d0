package process

import (
	"context"
	"slices"
	"sync"
)

// Matcher decides whether a rule applies to a command.
type Matcher func(cmd Command) bool

// Reply is the canned response of a rule.
type Reply struct {
	Result Result
	Err    error
}

// Recorder is a Runner that answers from registered rules and records every
// call. Commands that match no rule exit with status 127.
type Recorder struct {
	mu    sync.Mutex
	rules []recorderRule
	calls []Command
}

type recorderRule struct {
	match Matcher
	reply Reply
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// On registers a reply for matching commands. Earlier rules win.
func (r *Recorder) On(match Matcher, reply Reply) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, recorderRule{match: match, reply: reply})
	return r
}

// OnArgs registers a reply for commands whose name matches and whose
// arguments start with prefix.
func (r *Recorder) OnArgs(name string, prefix []string, reply Reply) *Recorder {
	return r.On(func(cmd Command) bool {
		return cmd.Name == name && len(cmd.Args) >= len(prefix) && slices.Equal(cmd.Args[:len(prefix)], prefix)
	}, reply)
}

// Run implements Runner.
func (r *Recorder) Run(_ context.Context, cmd Command) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, cmd)
	for _, rule := range r.rules {
		if rule.match(cmd) {
			return rule.reply.Result, rule.reply.Err
		}
	}
	return Result{ExitCode: 127, Stderr: cmd.Name + ": command not found"}, nil
}

// Start implements Runner.
func (r *Recorder) Start(cmd Command) error {
	_, err := r.Run(context.Background(), cmd)
	return err
}

// Calls returns the recorded commands in call order.
func (r *Recorder) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallsTo returns the recorded commands run with the given program name.
func (r *Recorder) CallsTo(name string) []Command {
	var out []Command
	for _, c := range r.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

var _ Runner = (*Recorder)(nil)
