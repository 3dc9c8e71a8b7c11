package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/skillset-echo/internal/links"
	"github.com/mattjoyce/skillset-echo/internal/workspace"
)

var errNotObject = errors.New("request body must be a JSON object")

// handleHealth handles GET /health (no auth).
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: s.timestamp(),
	})
}

// handleInfo handles GET / (no auth).
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, InfoResponse{
		Service:           s.config.Name,
		Version:           s.config.Version,
		Description:       "Test service for signed skillset requests and Markdown file links.",
		LinkMode:          s.resolver.Mode,
		RequireSignature:  s.gate.RequireSignature(),
		ConfigFingerprint: s.config.Fingerprint,
		Endpoints: map[string]string{
			"GET /health":               "Liveness check",
			"GET /":                     "This description",
			"POST /api/test/debug":      "Echo the signed request body",
			"POST /api/test/file-links": "Render sample file links against the detected workspace",
			"POST /api/test/greeting":   "Greet the caller by name",
			"POST /api/test/analyze":    "Canned code analysis with file links",
		},
		SetupInstructions: []string{
			"Sign each POST body with the shared secret and send it as X-Hub-Signature-256: sha256=<hex>.",
			"Send the absolute workspace path in the JSON body as 'workspace_path' to get absolute file links.",
			"Trailing slashes, dots and whitespace are stripped from workspace paths.",
			"Without a usable workspace path links are rendered relative (./path/to/file).",
		},
	})
}

// handleDebug handles POST /api/test/debug.
func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	s.logger.Debug("debug payload received", "endpoint", r.URL.Path, "fields", len(body))

	respondJSON(w, http.StatusOK, DebugResponse{
		ResponseID:   uuid.NewString(),
		Message:      "Debug data received",
		ReceivedBody: body,
		Timestamp:    s.timestamp(),
	})
}

// handleFileLinks handles POST /api/test/file-links.
func (s *Server) handleFileLinks(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	ws, detected := workspace.Detect(body)
	if detected {
		s.logger.Info("workspace detected", "endpoint", r.URL.Path, "field", ws.Field)
	} else {
		s.logger.Warn("no workspace path in request; links will be relative", "endpoint", r.URL.Path)
	}

	if !s.delay(r.Context()) {
		return
	}

	targets := make([]links.LinkTarget, 0, len(sampleReferences))
	fallbacks := 0
	for _, ref := range sampleReferences {
		t := s.resolver.Resolve(ref, ws.Root)
		if t.Fallback {
			fallbacks++
			s.logger.Warn("link fell back to relative",
				"endpoint", r.URL.Path,
				"path", ref.Path,
				"reason", t.FallbackReason,
			)
		}
		targets = append(targets, t)
	}

	sample := s.resolver.Resolve(links.FileReference{Path: "src/utils/helpers.js", Line: 10}, ws.Root)
	mode := links.ModeRelative
	if detected {
		mode = s.resolver.Mode
	}

	debug := FileLinksDebug{
		WorkspaceField: ws.Field,
		LinkMode:       mode,
		LinkFormatUsed: "markdown_" + string(mode),
		SampleLink:     sample.Markdown(),
		Fallbacks:      fallbacks,
	}
	if detected {
		root := ws.Root
		debug.DetectedWorkspace = &root
	}

	respondJSON(w, http.StatusOK, FileLinksResponse{
		ResponseID: uuid.NewString(),
		Message:    fileLinksMessage(ws, detected, mode, targets, sample),
		Links:      targets,
		Timestamp:  s.timestamp(),
		Status:     "success",
		DebugInfo:  debug,
	})
}

// handleGreeting handles POST /api/test/greeting.
func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	name := "Developer"
	if v, ok := body["name"].(string); ok && strings.TrimSpace(v) != "" {
		name = v
	}

	if !s.delay(r.Context()) {
		return
	}

	respondJSON(w, http.StatusOK, GreetingResponse{
		ResponseID:   uuid.NewString(),
		Message:      fmt.Sprintf("Hello %s! This is a test response from %s", name, s.config.Name),
		Timestamp:    s.timestamp(),
		ReceivedData: body,
		Status:       "success",
	})
}

// handleAnalyze handles POST /api/test/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	snippet, _ := body["code_snippet"].(string)
	if snippet == "" {
		s.writeError(w, http.StatusBadRequest, "missing required parameter: code_snippet")
		return
	}
	language := "javascript"
	if v, ok := body["language"].(string); ok && v != "" {
		language = v
	}

	var root string
	if raw, ok := body["workspace_path"].(string); ok {
		root, _ = workspace.Clean(raw)
	}
	if root == "" {
		s.logger.Warn("analyze without workspace path; links will be relative", "endpoint", r.URL.Path)
	}

	if !s.delay(r.Context()) {
		return
	}

	issues := make([]Issue, len(cannedIssues))
	for i, issue := range cannedIssues {
		issue.Link = s.resolver.Resolve(links.FileReference{Path: issue.File, Line: issue.Line}, root)
		issues[i] = issue
	}

	analysis := Analysis{
		Language:    language,
		LinesOfCode: strings.Count(snippet, "\n") + 1,
		IssuesFound: issues,
		Suggestions: []string{"Prefer const for bindings that are never reassigned", "Hoist invariant work out of loops"},
	}

	respondJSON(w, http.StatusOK, AnalyzeResponse{
		ResponseID:          uuid.NewString(),
		Message:             "**Code Analysis Complete**",
		Summary:             fmt.Sprintf("Analyzed %d lines of %s code.", analysis.LinesOfCode, language),
		IssuesWithFileLinks: issuesMessage(issues),
		Analysis:            analysis,
		Timestamp:           s.timestamp(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("unhandled request", "method", r.Method, "path", r.URL.Path)
	s.writeError(w, http.StatusNotFound, "endpoint not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeBody parses the request body as a JSON object. An empty body is an
// empty object. On failure it writes a 400 and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	body, err := parseObject(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return body, true
}

func parseObject(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

// respondJSON is a helper to write JSON responses
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
