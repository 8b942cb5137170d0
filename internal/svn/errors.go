package svn

import "errors"

const (
	opStatus   = "svn status"
	opUpdate   = "svn update"
	opCommit   = "svn commit"
	opDiff     = "svn diff"
	opAdd      = "svn add"
	opRevert   = "svn revert"
	opCheckout = "svn checkout"
	opAuthTest = "svn auth test"
)

const installGuidance = `Subversion is not installed or not on PATH.

Install it:
  - Windows: download from https://subversion.apache.org/packages.html
  - macOS: brew install subversion
  - Linux: sudo apt install subversion or sudo yum install subversion`

const authGuidance = `Possible causes: wrong user name or password, missing access rights, or expired credentials.

Try one of the following:
  1. Enter credentials once: svn update --username <user>
  2. Save the svn user name and password in preferences
  3. Clear the cached credentials in ~/.subversion/auth and authenticate again`

var (
	ErrNoWorkingCopy = errors.New("no working copy found")
	ErrNotInstalled  = errors.New("svn is not installed")
)
