package server

import "github.com/mattjoyce/skillset-echo/internal/links"

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	Service           string            `json:"service"`
	Version           string            `json:"version"`
	Description       string            `json:"description"`
	LinkMode          links.Mode        `json:"link_mode"`
	RequireSignature  bool              `json:"require_signature"`
	ConfigFingerprint string            `json:"config_fingerprint,omitempty"`
	Endpoints         map[string]string `json:"endpoints"`
	SetupInstructions []string          `json:"setup_instructions"`
}

// DebugResponse is returned by POST /api/test/debug.
type DebugResponse struct {
	ResponseID   string         `json:"response_id"`
	Message      string         `json:"message"`
	ReceivedBody map[string]any `json:"received_body"`
	Timestamp    string         `json:"timestamp"`
}

// FileLinksResponse is returned by POST /api/test/file-links.
type FileLinksResponse struct {
	ResponseID string             `json:"response_id"`
	Message    string             `json:"message"`
	Links      []links.LinkTarget `json:"links"`
	Timestamp  string             `json:"timestamp"`
	Status     string             `json:"status"`
	DebugInfo  FileLinksDebug     `json:"debug_info"`
}

// FileLinksDebug reports how the links in a FileLinksResponse were built.
type FileLinksDebug struct {
	// DetectedWorkspace is null when no candidate field held a usable path.
	DetectedWorkspace *string    `json:"detected_workspace_cleaned"`
	WorkspaceField    string     `json:"workspace_field,omitempty"`
	LinkMode          links.Mode `json:"link_mode"`
	LinkFormatUsed    string     `json:"link_format_used"`
	SampleLink        string     `json:"sample_link"`
	Fallbacks         int        `json:"fallbacks"`
}

// GreetingResponse is returned by POST /api/test/greeting.
type GreetingResponse struct {
	ResponseID   string         `json:"response_id"`
	Message      string         `json:"message"`
	Timestamp    string         `json:"timestamp"`
	ReceivedData map[string]any `json:"received_data"`
	Status       string         `json:"status"`
}

// AnalyzeResponse is returned by POST /api/test/analyze.
type AnalyzeResponse struct {
	ResponseID          string   `json:"response_id"`
	Message             string   `json:"message"`
	Summary             string   `json:"summary"`
	IssuesWithFileLinks string   `json:"issues_with_file_links"`
	Analysis            Analysis `json:"analysis"`
	Timestamp           string   `json:"timestamp"`
}

// Analysis is the canned result of POST /api/test/analyze.
type Analysis struct {
	Language    string   `json:"language"`
	LinesOfCode int      `json:"lines_of_code"`
	IssuesFound []Issue  `json:"issues_found"`
	Suggestions []string `json:"suggestions"`
}

// Issue is a single finding, pointing at a file and line.
type Issue struct {
	Type        string           `json:"type"`
	Severity    string           `json:"severity"`
	Description string           `json:"description"`
	Line        int              `json:"line"`
	File        string           `json:"file"`
	Link        links.LinkTarget `json:"link"`
}
