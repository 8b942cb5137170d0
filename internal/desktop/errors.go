package desktop

const (
	opOpenFolder   = "open folder"
	opOpenTerminal = "open terminal"
	opOpenEditor   = "open editor"
	opHomeDir      = "home directory"
)

// MacOSEditorPath is the command-line launcher inside the macOS application
// bundle of Visual Studio Code.
const MacOSEditorPath = "/Applications/Visual Studio Code.app/Contents/Resources/app/bin/code"

const editorGuidance = `Make sure that:
1. Visual Studio Code is installed
2. the 'code' command is on PATH

In Visual Studio Code press Cmd+Shift+P (Ctrl+Shift+P) and run
'Shell Command: Install code command in PATH', or set editor.vscode_path
in the preferences.`
