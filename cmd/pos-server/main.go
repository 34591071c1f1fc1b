package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/tdstore/pos-scanner/internal/catalog"
	"github.com/tdstore/pos-scanner/internal/label"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("pos-server")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "pos-scanner.db", "Database file path")
		uploadsPath = fs.StringLong("uploads", "./uploads", "Product image directory")
		geminiKey   = fs.StringLong("gemini-key", "", "Gemini API key for label assist (or set POS_SERVER_GEMINI_KEY)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Gemini model name")
		adminUser   = fs.StringLong("admin-user", "", "Create or reset this admin account at startup")
		adminPass   = fs.StringLong("admin-pass", "", "Password for --admin-user")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("POS_SERVER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := catalog.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := catalog.NewLocalStorage(*uploadsPath)
	if err != nil {
		slog.Error("Failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	var labeler label.Labeler
	if *geminiKey != "" {
		slog.Info("Initializing label assist...", "model", *geminiModel)
		labeler, err = label.NewGemini(*geminiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize label assist", "error", err)
			os.Exit(1)
		}
		defer labeler.Close()
	}

	service := catalog.NewService(db, store, labeler)

	if *adminUser != "" {
		if err := service.EnsureAdmin(*adminUser, *adminPass); err != nil {
			slog.Error("Failed to create admin user", "user", *adminUser, "error", err)
			os.Exit(1)
		}
		slog.Info("Admin account ready", "user", *adminUser)
	}

	server := catalog.NewServer(service)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
