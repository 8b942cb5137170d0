package git

import "github.com/pmtools/vcsbridge/internal/credentials"

const (
	// DefaultRemote is used when the current branch has no upstream.
	DefaultRemote = "origin"
	// SecondaryRemote is probed by the authentication test when DefaultRemote is missing.
	SecondaryRemote = "upstream"
)

// Defaults are per-call user preferences for network operations.
type Defaults struct {
	Remote           string
	SSHKeyPath       string
	SSHKeyPassphrase string
	HTTPSUsername    string
	HTTPSToken       string
}

func (d Defaults) remote() string {
	if d.Remote == "" {
		return DefaultRemote
	}
	return d.Remote
}

func (d Defaults) credentials(fallbackUser string) credentials.Defaults {
	return credentials.Defaults{
		FallbackUser:     fallbackUser,
		SSHKeyPath:       d.SSHKeyPath,
		SSHKeyPassphrase: d.SSHKeyPassphrase,
		HTTPSUsername:    d.HTTPSUsername,
		HTTPSToken:       d.HTTPSToken,
	}
}
