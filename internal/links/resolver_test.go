package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ref  FileReference
		root string
		mode Mode
		want LinkTarget
	}{
		{
			name: "absolute uri with line",
			ref:  FileReference{Path: "src/a.js", Line: 10},
			root: "/ws",
			mode: ModeAbsoluteURI,
			want: LinkTarget{DisplayText: "src/a.js:10", URI: "file:///ws/src/a.js#L10", Mode: ModeAbsoluteURI},
		},
		{
			name: "absolute uri without line",
			ref:  FileReference{Path: "package.json"},
			root: "/home/dev/project",
			mode: ModeAbsoluteURI,
			want: LinkTarget{DisplayText: "package.json", URI: "file:///home/dev/project/package.json", Mode: ModeAbsoluteURI},
		},
		{
			name: "absolute uri collapses doubled separators",
			ref:  FileReference{Path: `src\\utils//helpers.js`, Line: 45},
			root: "/ws/",
			mode: ModeAbsoluteURI,
			want: LinkTarget{DisplayText: `src\\utils//helpers.js:45`, URI: "file:///ws/src/utils/helpers.js#L45", Mode: ModeAbsoluteURI},
		},
		{
			name: "absolute uri escapes spaces",
			ref:  FileReference{Path: "docs/read me.md"},
			root: "/my ws",
			mode: ModeAbsoluteURI,
			want: LinkTarget{DisplayText: "docs/read me.md", URI: "file:///my%20ws/docs/read%20me.md", Mode: ModeAbsoluteURI},
		},
		{
			name: "absolute uri with windows root",
			ref:  FileReference{Path: `src\a.js`, Line: 3},
			root: `C:\Users\dev\proj`,
			mode: ModeAbsoluteURI,
			want: LinkTarget{DisplayText: `src\a.js:3`, URI: "file:///C:/Users/dev/proj/src/a.js#L3", Mode: ModeAbsoluteURI},
		},
		{
			name: "custom scheme with line",
			ref:  FileReference{Path: "src/a.js", Line: 10},
			root: "/ws",
			mode: ModeCustomScheme,
			want: LinkTarget{DisplayText: "src/a.js:10", URI: "vscode://file/ws/src/a.js:10", Mode: ModeCustomScheme},
		},
		{
			name: "custom scheme without line",
			ref:  FileReference{Path: "README.md"},
			root: "/ws",
			mode: ModeCustomScheme,
			want: LinkTarget{DisplayText: "README.md", URI: "vscode://file/ws/README.md", Mode: ModeCustomScheme},
		},
		{
			name: "workspace relative normalizes backslashes",
			ref:  FileReference{Path: `a\b.js`, Line: 5},
			root: "/root/",
			mode: ModeWorkspaceRelative,
			want: LinkTarget{DisplayText: `a\b.js:5`, URI: "root/a/b.js", Mode: ModeWorkspaceRelative},
		},
		{
			name: "workspace relative with windows root",
			ref:  FileReference{Path: "src//x.go"},
			root: `D:\code\svc`,
			mode: ModeWorkspaceRelative,
			want: LinkTarget{DisplayText: "src//x.go", URI: "svc/src/x.go", Mode: ModeWorkspaceRelative},
		},
		{
			name: "relative without workspace",
			ref:  FileReference{Path: "a.js"},
			mode: ModeRelative,
			want: LinkTarget{DisplayText: "a.js", URI: "./a.js", Mode: ModeRelative},
		},
		{
			name: "relative keeps line display-only",
			ref:  FileReference{Path: "src/a.js", Line: 7},
			root: "/ws",
			mode: ModeRelative,
			want: LinkTarget{DisplayText: "src/a.js:7", URI: "./src/a.js", Mode: ModeRelative},
		},
		{
			name: "absolute mode without workspace is relative, not a fallback",
			ref:  FileReference{Path: "a.js", Line: 2},
			root: "   ",
			mode: ModeAbsoluteURI,
			want: LinkTarget{DisplayText: "a.js:2", URI: "./a.js", Mode: ModeRelative},
		},
		{
			name: "relative strips leading dot-slash",
			ref:  FileReference{Path: "./a.js"},
			mode: ModeRelative,
			want: LinkTarget{DisplayText: "./a.js", URI: "./a.js", Mode: ModeRelative},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ref, tt.root, tt.mode))
		})
	}
}

func TestResolve_JoinFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		ref  FileReference
		root string
		mode Mode
	}{
		{name: "control character in root", ref: FileReference{Path: "a.js", Line: 4}, root: "/ws\x00evil", mode: ModeAbsoluteURI},
		{name: "control character in path", ref: FileReference{Path: "a\n.js", Line: 4}, root: "/ws", mode: ModeCustomScheme},
		{name: "invalid utf-8 root", ref: FileReference{Path: "a.js", Line: 4}, root: "/ws/\xff", mode: ModeAbsoluteURI},
		{name: "root without base name", ref: FileReference{Path: "a.js", Line: 4}, root: "/", mode: ModeWorkspaceRelative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.ref, tt.root, tt.mode)
			assert.True(t, got.Fallback)
			assert.Equal(t, FallbackPathJoin, got.FallbackReason)
			assert.Equal(t, ModeRelative, got.Mode)
			assert.Equal(t, tt.ref.Path+":4", got.DisplayText)
			assert.NotContains(t, got.URI, "#")
		})
	}
}

func TestResolve_UnknownModeFallsBack(t *testing.T) {
	got := Resolve(FileReference{Path: "a.js"}, "/ws", Mode("bogus"))
	assert.Equal(t, LinkTarget{
		DisplayText:    "a.js",
		URI:            "./a.js",
		Mode:           ModeRelative,
		Fallback:       true,
		FallbackReason: FallbackUnknownMode,
	}, got)
}

func TestResolve_Deterministic(t *testing.T) {
	ref := FileReference{Path: `src\utils\helpers.js`, Line: 10}
	for _, mode := range Modes {
		first := Resolve(ref, "/ws/project", mode)
		second := Resolve(ref, "/ws/project", mode)
		assert.Equal(t, first, second, mode)
	}
}

func TestResolver_CustomScheme(t *testing.T) {
	r, err := NewResolver(ModeCustomScheme, "cursor")
	require.NoError(t, err)

	got := r.Resolve(FileReference{Path: "main.go", Line: 1}, "/src/app")
	assert.Equal(t, "cursor://file/src/app/main.go:1", got.URI)
}

func TestNewResolver(t *testing.T) {
	r, err := NewResolver(ModeAbsoluteURI, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultScheme, r.Scheme)

	_, err = NewResolver(Mode("nope"), "")
	assert.Error(t, err)

	_, err = NewResolver(ModeCustomScheme, "1bad scheme")
	assert.Error(t, err)
}

func TestZeroResolverIsRelative(t *testing.T) {
	got := Resolver{}.Resolve(FileReference{Path: "x.go", Line: 3}, "/ws")
	assert.Equal(t, "./x.go", got.URI)
	assert.False(t, got.Fallback)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Absolute_URI ")
	require.NoError(t, err)
	assert.Equal(t, ModeAbsoluteURI, m)

	_, err = ParseMode("fragment")
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	target := Resolve(FileReference{Path: "src/a.js", Line: 10}, "/ws", ModeAbsoluteURI)
	assert.Equal(t, "[src/a.js:10](file:///ws/src/a.js#L10)", target.Markdown())
}
