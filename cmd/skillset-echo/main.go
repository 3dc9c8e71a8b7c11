package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/skillset-echo/internal/config"
	"github.com/mattjoyce/skillset-echo/internal/log"
	"github.com/mattjoyce/skillset-echo/internal/server"
	"github.com/mattjoyce/skillset-echo/internal/webhook"
)

const version = "1.2.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) < 1 {
		printUsage()
		return 1
	}

	cmd := argv[0]
	args := argv[1:]

	switch cmd {
	case "serve", "start":
		if hasHelpFlag(args) {
			printServeHelp()
			return 0
		}
		return runServe(args)
	case "sign":
		if hasHelpFlag(args) {
			printSignHelp()
			return 0
		}
		return runSign(args)
	case "link":
		if hasHelpFlag(args) {
			printLinkHelp()
			return 0
		}
		return runLink(args)
	case "config":
		return runConfigNoun(args)
	case "version":
		fmt.Printf("skillset-echo version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Print(`skillset-echo - Signed webhook test harness with Markdown file links

Usage:
  skillset-echo <command> [flags]

Commands:
  serve             Start the HTTP service in the foreground
  sign              Print the signature header value for a payload
  link              Render a file reference as a Markdown link
  config check      Load and validate configuration

General:
  version           Show version information
  help              Show this help message

Use 'skillset-echo <command> --help' for command flags.
`)
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: skillset-echo config <action> [flags]")
	fmt.Fprintln(w, "Actions: check")
}

func printServeHelp() {
	fmt.Println("Usage: skillset-echo serve [--config PATH]")
	fmt.Println("Start the HTTP service in the foreground. Without --config, $SKILLSET_ECHO_CONFIG,")
	fmt.Println("./config.yaml and then defaults plus environment are tried.")
}

func printSignHelp() {
	fmt.Println("Usage: skillset-echo sign --secret SECRET [--alg sha256|sha1|none] [--file PATH | --data BODY]")
	fmt.Println("Print the signature header line for a payload read from stdin, a file, or --data.")
}

func printLinkHelp() {
	fmt.Println("Usage: skillset-echo link --path PATH [--line N] [--workspace DIR] [--mode MODE] [--scheme NAME] [--json]")
	fmt.Println("Render a file reference. Modes: absolute_uri, custom_scheme, workspace_relative, relative.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: skillset-echo config check [--config PATH] [--json]")
	fmt.Println("Load and validate configuration and print its fingerprint.")
}

// --- ACTION IMPLEMENTATIONS ---

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")

	fingerprint, err := cfg.Fingerprint()
	if err != nil {
		logger.Error("failed to fingerprint config", "error", err)
		return 1
	}
	logger.Info("skillset-echo starting", "version", version, "config", cfg.SourceFile, "fingerprint", fingerprint)

	auth, err := webhook.New(webhook.Config{
		Secret:           cfg.Webhook.Secret,
		RequireSignature: cfg.Webhook.RequireSignature,
	})
	if err != nil {
		logger.Error("failed to create authenticator", "error", err)
		return 1
	}

	resolver, err := cfg.LinkResolver()
	if err != nil {
		logger.Error("invalid link settings", "error", err)
		return 1
	}

	srv := server.New(server.Config{
		Name:            cfg.Service.Name,
		Version:         version,
		Listen:          cfg.Server.Listen,
		MaxBodySize:     cfg.MaxBodyBytes(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ResponseDelay:   cfg.Server.ResponseDelay,
		Fingerprint:     fingerprint,
	}, auth, resolver, log.WithComponent("server"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", "error", err)
		return 1
	}
	logger.Info("skillset-echo stopped")
	return 0
}
