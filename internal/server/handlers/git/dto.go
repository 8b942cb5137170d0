package git

// CommitRequest is the payload of POST /git/commit.
type CommitRequest struct {
	Path    string `json:"path"    validate:"required"`
	Message string `json:"message" validate:"required,max=10000"`
}

// CloneRequest is the payload of POST /git/clone.
type CloneRequest struct {
	URL        string `json:"url"         validate:"required"`
	TargetPath string `json:"target_path" validate:"required"`
}

// DiffResponse carries unified diff text.
type DiffResponse struct {
	Diff string `json:"diff"`
}
