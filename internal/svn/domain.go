package svn

// WorkingCopyStatus is a snapshot of an svn working copy.
type WorkingCopyStatus struct {
	Revision       *string  `json:"revision"`
	URL            *string  `json:"url"`
	RepositoryRoot *string  `json:"repository_root"`
	Author         *string  `json:"author"`
	Date           *string  `json:"date"`
	Modified       []string `json:"modified"`
	Untracked      []string `json:"untracked"`
	IsDirty        bool     `json:"is_dirty"`
}

// Info holds the fields of `svn info` output used by this package.
type Info struct {
	Revision       string
	URL            string
	RepositoryRoot string
	Author         string
	Date           string
}

// Credentials are passed to networked svn commands when set.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) empty() bool {
	return c.Username == "" && c.Password == ""
}

// AuthReport is the result of a successful authentication test.
type AuthReport struct {
	URL            string `json:"url"`
	Revision       string `json:"revision"`
	RepositoryRoot string `json:"repository_root"`
}

func (r AuthReport) String() string {
	return "Authentication succeeded.\n\nRepository URL: " + r.URL +
		"\nRevision: " + r.Revision +
		"\nRepository root: " + r.RepositoryRoot +
		"\nCredentials are configured correctly for update and commit."
}
