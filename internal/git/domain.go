package git

// RepositoryStatus is a snapshot of a git working tree.
type RepositoryStatus struct {
	Branch       *string  `json:"branch"`
	HeadRevision *string  `json:"head_revision"`
	Modified     []string `json:"modified"`
	Untracked    []string `json:"untracked"`
	IsDirty      bool     `json:"is_dirty"`
	// Ahead and Behind are not computed and are always nil.
	Ahead  *int `json:"ahead"`
	Behind *int `json:"behind"`
}

// AuthReport is the result of a successful authentication test.
type AuthReport struct {
	Remote string `json:"remote"`
	URL    string `json:"url"`
	Scheme string `json:"scheme"`
}

func (r AuthReport) String() string {
	return "Authentication succeeded.\n\nRemote: " + r.URL + "\nMethod: " + r.Scheme +
		"\nCredentials are configured correctly for pull and push."
}
