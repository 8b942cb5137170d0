// Package credentials supplies authentication candidates for go-git network
// operations, one at a time, in a fixed priority order.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v6/plumbing/transport"
	githttp "github.com/go-git/go-git/v6/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v6/plumbing/transport/ssh"
	"github.com/pmtools/vcsbridge/internal/process"
	"go.uber.org/zap"
)

// DefaultUser is used when the remote URL carries no user name.
const DefaultUser = "git"

// Guidance is attached to every authentication failure.
const Guidance = `Try one of the following:
  1. Run the command once in a terminal (git pull / git push) so the credential helper caches your credentials
  2. Switch the remote to SSH: git remote set-url origin git@github.com:user/repo.git
  3. Configure a credential helper: git config --global credential.helper manager`

// Defaults are the user-configurable inputs of the chain.
type Defaults struct {
	FallbackUser     string
	SSHKeyPath       string
	SSHKeyPassphrase string
	HTTPSUsername    string
	HTTPSToken       string
}

// Candidate lazily builds one authentication method.
type Candidate struct {
	Name  string
	Build func(ctx context.Context) (transport.AuthMethod, error)
}

// Config selects the git binary used for the platform credential helper lookup.
type Config struct {
	GitBinary string
}

// Resolver builds credential chains. It holds no per-operation state.
type Resolver struct {
	runner    process.Runner
	gitBinary string

	logger *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(config Config, runner process.Runner, logger *zap.Logger) *Resolver {
	gitBinary := config.GitBinary
	if gitBinary == "" {
		gitBinary = "git"
	}
	return &Resolver{
		runner:    runner,
		gitBinary: gitBinary,
		logger:    logger,
	}
}

// Chain returns the ordered candidates for a remote. Nothing is evaluated
// until Next is called.
func (r *Resolver) Chain(remoteURL string, d Defaults) *Chain {
	remote := ParseRemote(remoteURL)

	user := remote.User
	if user == "" {
		user = d.FallbackUser
	}
	if user == "" {
		user = DefaultUser
	}

	var candidates []Candidate
	switch remote.Scheme {
	case SchemeSSH:
		candidates = append(candidates, Candidate{
			Name: "ssh-agent",
			Build: func(context.Context) (transport.AuthMethod, error) {
				return gitssh.NewSSHAgentAuth(user)
			},
		})
		if d.SSHKeyPath != "" {
			candidates = append(candidates, Candidate{
				Name: "ssh-key",
				Build: func(context.Context) (transport.AuthMethod, error) {
					return gitssh.NewPublicKeysFromFile(user, d.SSHKeyPath, d.SSHKeyPassphrase)
				},
			})
		}
	case SchemeHTTPS:
		candidates = append(candidates, Candidate{
			Name: "credential-helper",
			Build: func(ctx context.Context) (transport.AuthMethod, error) {
				return r.helperCredentials(ctx, remote)
			},
		})
		if d.HTTPSToken != "" {
			username := d.HTTPSUsername
			if username == "" {
				username = user
			}
			candidates = append(candidates, Candidate{
				Name: "configured-token",
				Build: func(context.Context) (transport.AuthMethod, error) {
					return &githttp.BasicAuth{Username: username, Password: d.HTTPSToken}, nil
				},
			})
		}
	case SchemeUnknown:
	}

	return &Chain{
		remote:     remote,
		candidates: candidates,
		logger:     r.logger,
	}
}

var errNoHelperCredentials = errors.New("credential helper returned no credentials")

// helperCredentials asks `git credential fill` for the platform credential
// store entry of the remote, with interactive prompts disabled.
func (r *Resolver) helperCredentials(ctx context.Context, remote Remote) (transport.AuthMethod, error) {
	var in strings.Builder
	fmt.Fprintf(&in, "protocol=%s\n", remote.Protocol)
	fmt.Fprintf(&in, "host=%s\n", remote.Host)
	if remote.Path != "" {
		fmt.Fprintf(&in, "path=%s\n", remote.Path)
	}
	if remote.User != "" {
		fmt.Fprintf(&in, "username=%s\n", remote.User)
	}
	in.WriteString("\n")

	res, err := r.runner.Run(ctx, process.Command{
		Name:  r.gitBinary,
		Args:  []string{"credential", "fill"},
		Env:   []string{"GIT_TERMINAL_PROMPT=0", "GCM_INTERACTIVE=never"},
		Stdin: in.String(),
	})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%w: %s", errNoHelperCredentials, strings.TrimSpace(res.Stderr))
	}

	auth := &githttp.BasicAuth{}
	for _, line := range process.Lines(res.Stdout) {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "username":
			auth.Username = value
		case "password":
			auth.Password = value
		}
	}
	if auth.Password == "" {
		return nil, errNoHelperCredentials
	}

	return auth, nil
}
