package operations

const (
	opPull     = "pull"
	opPush     = "push"
	opCommit   = "commit"
	opDiff     = "diff"
	opClone    = "clone"
	opStatus   = "status"
	opAuthTest = "auth test"
)
