package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattjoyce/skillset-echo/internal/config"
	"github.com/mattjoyce/skillset-echo/internal/links"
	"github.com/mattjoyce/skillset-echo/internal/webhook"
	"github.com/mattjoyce/skillset-echo/internal/workspace"
)

var stdin io.Reader = os.Stdin

func runSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	secret := fs.String("secret", "", "Shared HMAC secret (default $GITHUB_WEBHOOK_SECRET)")
	alg := fs.String("alg", "sha256", "Header format: sha256, sha1, or none (bare sha256 digest)")
	file := fs.String("file", "", "Read the payload from this file instead of stdin")
	data := fs.String("data", "", "Use this string as the payload")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *secret == "" {
		*secret = os.Getenv(config.EnvWebhookSecret)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "Error: --secret is required")
		return 1
	}

	var algorithm webhook.Algorithm
	switch strings.ToLower(*alg) {
	case "sha256":
		algorithm = webhook.AlgorithmSHA256
	case "sha1":
		algorithm = webhook.AlgorithmSHA1
	case "none":
		algorithm = webhook.AlgorithmUnspecified
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported --alg %q (want sha256, sha1 or none)\n", *alg)
		return 1
	}

	var body []byte
	var err error
	switch {
	case *file != "" && *data != "":
		fmt.Fprintln(os.Stderr, "Error: --file and --data are mutually exclusive")
		return 1
	case *file != "":
		body, err = os.ReadFile(*file)
	case *data != "":
		body = []byte(*data)
	default:
		body, err = io.ReadAll(stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read payload: %v\n", err)
		return 1
	}

	digest := webhook.Sign(body, *secret, algorithm)
	fmt.Printf("%s: %s\n", webhook.HeaderFor(algorithm), webhook.FormatHeader(algorithm, digest))
	return 0
}

func runLink(args []string) int {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)
	path := fs.String("path", "", "File path relative to the workspace")
	line := fs.Int("line", 0, "1-based line number (0 for none)")
	root := fs.String("workspace", "", "Workspace root (cleaned before use)")
	mode := fs.String("mode", string(links.ModeAbsoluteURI), "Link mode")
	scheme := fs.String("scheme", links.DefaultScheme, "Scheme for custom_scheme mode")
	jsonOut := fs.Bool("json", false, "Output the link target as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Error: --path is required")
		return 1
	}
	if *line < 0 {
		fmt.Fprintln(os.Stderr, "Error: --line must not be negative")
		return 1
	}

	resolver, err := links.NewResolver(links.Mode(*mode), *scheme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ws := ""
	if *root != "" {
		ws, _ = workspace.Clean(*root)
	}
	target := resolver.Resolve(links.FileReference{Path: *path, Line: *line}, ws)

	if *jsonOut {
		data, _ := json.MarshalIndent(target, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Println(target.Markdown())
	if target.Fallback {
		fmt.Fprintf(os.Stderr, "Warning: fell back to relative link (%s)\n", target.FallbackReason)
	}
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration")
	jsonOut := fs.Bool("json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config load error: %v\n", err)
		return 1
	}

	fingerprint, err := cfg.Fingerprint()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fingerprint error: %v\n", err)
		return 1
	}

	source := cfg.SourceFile
	if source == "" {
		source = "(defaults + environment)"
	}

	if *jsonOut {
		out := map[string]any{
			"valid":             true,
			"source":            source,
			"fingerprint":       fingerprint,
			"listen":            cfg.Server.Listen,
			"max_body_bytes":    cfg.MaxBodyBytes(),
			"require_signature": cfg.Webhook.RequireSignature,
			"link_mode":         cfg.Links.Mode,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Println("Configuration OK")
	fmt.Printf("  source:            %s\n", source)
	fmt.Printf("  fingerprint:       %s\n", fingerprint)
	fmt.Printf("  listen:            %s\n", cfg.Server.Listen)
	fmt.Printf("  max_body_bytes:    %d\n", cfg.MaxBodyBytes())
	fmt.Printf("  require_signature: %t\n", cfg.Webhook.RequireSignature)
	fmt.Printf("  link_mode:         %s\n", cfg.Links.Mode)
	if !cfg.Webhook.RequireSignature {
		fmt.Println("Warning: require_signature is false; unsigned requests will be accepted")
	}
	return 0
}
