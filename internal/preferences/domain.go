package preferences

import (
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/svn"
)

const DefaultEditor = "code"

// Preferences are the user-editable settings shared with the desktop shell.
// Optional values are null in the file when unset.
type Preferences struct {
	Git    GitPreferences    `json:"git"`
	Svn    SvnPreferences    `json:"svn"`
	Editor EditorPreferences `json:"editor"`
}

type GitPreferences struct {
	DefaultRemote    *string `json:"default_remote"`
	SSHKeyPath       *string `json:"ssh_key_path"`
	SSHKeyPassphrase *string `json:"ssh_key_passphrase,omitempty"`
	HTTPSUsername    *string `json:"https_username,omitempty"`
	HTTPSToken       *string `json:"https_token,omitempty"`
	AutoFetch        bool    `json:"auto_fetch"`
	AutoPush         bool    `json:"auto_push"`
}

type SvnPreferences struct {
	AutoUpdate bool    `json:"auto_update"`
	Username   *string `json:"username"`
	Password   *string `json:"password"`
}

type EditorPreferences struct {
	VSCodePath    *string `json:"vscode_path"`
	DefaultEditor string  `json:"default_editor"`
}

// Default returns the preferences written on first use.
func Default() Preferences {
	remote := git.DefaultRemote

	return Preferences{
		Git: GitPreferences{
			DefaultRemote: &remote,
		},
		Editor: EditorPreferences{
			DefaultEditor: DefaultEditor,
		},
	}
}

// GitDefaults derives the defaults passed to git network operations.
func (p Preferences) GitDefaults() git.Defaults {
	return git.Defaults{
		Remote:           value(p.Git.DefaultRemote),
		SSHKeyPath:       value(p.Git.SSHKeyPath),
		SSHKeyPassphrase: value(p.Git.SSHKeyPassphrase),
		HTTPSUsername:    value(p.Git.HTTPSUsername),
		HTTPSToken:       value(p.Git.HTTPSToken),
	}
}

// SvnCredentials derives the credentials passed to svn network operations.
func (p Preferences) SvnCredentials() svn.Credentials {
	return svn.Credentials{
		Username: value(p.Svn.Username),
		Password: value(p.Svn.Password),
	}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
