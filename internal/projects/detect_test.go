package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"", KindNone},
		{"git@github.com:user/repo.git", KindGit},
		{"https://gitlab.com/group/project", KindGit},
		{"https://bitbucket.org/team/repo", KindGit},
		{"https://example.com/repo.git", KindGit},
		{"HTTPS://GITHUB.COM/User/Repo", KindGit},
		{"svn://svn.example.com/project/trunk", KindSvn},
		{"https://example.com/svn/project", KindSvn},
		{"https://example.com/repos/project", KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.url))
		})
	}
}
