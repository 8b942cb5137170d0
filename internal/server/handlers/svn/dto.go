package svn

// CommitRequest is the payload of POST /svn/commit.
type CommitRequest struct {
	Path    string `json:"path"    validate:"required"`
	Message string `json:"message" validate:"required,max=10000"`
}

// FilesRequest is the payload of POST /svn/add and POST /svn/revert.
// For revert an absent list reverts the whole working copy.
type FilesRequest struct {
	Path  string   `json:"path"  validate:"required"`
	Files []string `json:"files" validate:"omitempty,dive,required"`
}

// CheckoutRequest is the payload of POST /svn/checkout.
type CheckoutRequest struct {
	URL        string `json:"url"         validate:"required"`
	TargetPath string `json:"target_path" validate:"required"`
}

// DiffResponse carries `svn diff` output.
type DiffResponse struct {
	Diff string `json:"diff"`
}
