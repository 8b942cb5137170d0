package projects

import "strings"

var (
	gitMarkers = []string{".git", "git@", "github.com", "gitlab.com", "bitbucket.org"}
	svnMarkers = []string{"svn://", ".svn", "/svn/"}
)

// DetectKind guesses the version control system from a remote URL. Git
// markers win over svn markers; an unrecognized URL yields KindNone.
func DetectKind(url string) Kind {
	if url == "" {
		return KindNone
	}

	lower := strings.ToLower(url)
	for _, marker := range gitMarkers {
		if strings.Contains(lower, marker) {
			return KindGit
		}
	}
	for _, marker := range svnMarkers {
		if strings.Contains(lower, marker) {
			return KindSvn
		}
	}

	return KindNone
}
