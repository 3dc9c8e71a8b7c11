// Package links renders file references as navigable link targets.
//
// Rendering is a pure function of the reference, the workspace root and the
// mode. The workspace root is used as a prefix exactly as given; it is never
// checked against the filesystem, so a client that sends a wrong or hostile
// root gets links that point wherever that root says.
package links

import (
	"fmt"
	"strings"
)

// Mode selects how a file reference is addressed.
type Mode string

const (
	// ModeAbsoluteURI renders file:///<root>/<path>#L<line>.
	ModeAbsoluteURI Mode = "absolute_uri"

	// ModeCustomScheme renders <scheme>://file/<root>/<path>:<line>.
	ModeCustomScheme Mode = "custom_scheme"

	// ModeWorkspaceRelative renders <basename(root)>/<path>. Lines are display-only.
	ModeWorkspaceRelative Mode = "workspace_relative"

	// ModeRelative renders ./<path>. Lines are display-only.
	ModeRelative Mode = "relative"
)

// DefaultScheme is the custom scheme used when none is configured.
const DefaultScheme = "vscode"

// Fallback reasons reported on LinkTarget.
const (
	FallbackPathJoin    = "path_join_failure"
	FallbackUnknownMode = "unknown_mode"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeAbsoluteURI, ModeCustomScheme, ModeWorkspaceRelative, ModeRelative}

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown link mode %q", s)
}

// FileReference points at a file, and optionally a line, relative to a workspace.
type FileReference struct {
	Path string `json:"path"`

	// Line is 1-based; zero means no line.
	Line int `json:"line,omitempty"`
}

// LinkTarget is a rendered file reference.
type LinkTarget struct {
	DisplayText string `json:"display_text"`
	URI         string `json:"uri"`

	// Mode is the mode actually rendered, which is ModeRelative after a fallback.
	Mode Mode `json:"mode"`

	// Fallback is set when the requested mode could not be rendered.
	Fallback       bool   `json:"fallback,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Markdown renders the target as [DisplayText](URI).
func (t LinkTarget) Markdown() string {
	return "[" + t.DisplayText + "](" + t.URI + ")"
}
