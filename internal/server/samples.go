package server

import (
	"fmt"
	"strings"

	"github.com/mattjoyce/skillset-echo/internal/links"
	"github.com/mattjoyce/skillset-echo/internal/workspace"
)

// sampleReferences are rendered by POST /api/test/file-links, in order:
// four bare files, five with lines, then two nested paths.
var sampleReferences = []links.FileReference{
	{Path: "test-service.js"},
	{Path: "package.json"},
	{Path: ".env"},
	{Path: "README.md"},
	{Path: "test-service.js", Line: 1},
	{Path: "test-service.js", Line: 25},
	{Path: "test-service.js", Line: 150},
	{Path: "package.json", Line: 5},
	{Path: "package.json", Line: 10},
	{Path: "src/components/Header.vue"},
	{Path: "src/utils/helpers.js", Line: 45},
}

var cannedIssues = []Issue{
	{Type: "style", Severity: "low", Description: "Use const", Line: 2, File: "test-service.js"},
	{Type: "performance", Severity: "medium", Description: "Loop optimization", Line: 50, File: "src/utils/helpers.js"},
}

func fileLinksMessage(ws workspace.Workspace, detected bool, mode links.Mode, targets []links.LinkTarget, sample links.LinkTarget) string {
	var b strings.Builder
	b.WriteString("**File Link Test Results**\n\n")
	if detected {
		fmt.Fprintf(&b, "**Workspace detected**: `%s` (from `%s`). Links use mode `%s`.\n", ws.Root, ws.Field, mode)
	} else {
		b.WriteString("**No workspace path detected**: links are relative (`./path/to/file`) and may not be clickable.\n\n")
		b.WriteString("Send the absolute workspace path as `workspace_path` for best results.\n")
	}

	section := func(title string, ts []links.LinkTarget) {
		fmt.Fprintf(&b, "\n**%s:**\n", title)
		for _, t := range ts {
			fmt.Fprintf(&b, "- %s\n", t.Markdown())
		}
	}
	section("File Links", targets[:4])
	section("File Links with Line Numbers", targets[4:9])
	section("Directory Structure Examples", targets[9:])

	root := "None"
	if detected {
		root = ws.Root
	}
	b.WriteString("\n**Debug Info:**\n")
	fmt.Fprintf(&b, "- Detected Workspace (Cleaned): `%s`\n", root)
	fmt.Fprintf(&b, "- Link Mode: `%s`\n", mode)
	fmt.Fprintf(&b, "- Sample Link: %s\n", sample.Markdown())
	return b.String()
}

func issuesMessage(issues []Issue) string {
	var b strings.Builder
	b.WriteString("**Issues Found:**")
	for _, issue := range issues {
		fmt.Fprintf(&b, "\n- %s: %s - %s", issueLabel(issue.Type), issue.Link.Markdown(), issue.Description)
	}
	return b.String()
}

func issueLabel(kind string) string {
	switch kind {
	case "style":
		return "Style"
	case "performance":
		return "Perf"
	default:
		return kind
	}
}
