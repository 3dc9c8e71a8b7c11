// Package workspace finds the client workspace root in a request body.
package workspace

// Workspace is a workspace root detected in a request body.
//
// Root is a caller-supplied prefix. It is cleaned but never checked against
// the filesystem, so it may name a directory that does not exist or that the
// caller has no business pointing at. Links built from it are only as
// trustworthy as the client that sent it.
type Workspace struct {
	Root string

	// Field is the dotted path of the body field Root was read from.
	Field string
}

// Candidates is the fixed priority order in which body fields are probed.
// The first candidate holding a usable path wins; later ones are ignored.
// Numeric segments index into arrays.
var Candidates = []string{
	"workspace_path",
	"workspace_root",
	"project_path",
	"repository_path",
	"editor_context.workspace_path",
	"editor_context.rootPath",
	"copilot_context.workspace.rootPath",
	"copilot_context.workspaceFolder.uri.fsPath",
	"vscode_context.workspace.rootPath",
	"vscode_context.workspaceFolders.0.uri.fsPath",
}
