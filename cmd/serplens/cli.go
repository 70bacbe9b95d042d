package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/serplens/serplens"
	"github.com/serplens/serplens/analyze"
	"github.com/serplens/serplens/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	DB       *sqlite.DB
	Analyses serplens.AnalysisService
	Runner   *analyze.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Run the analysis HTTP API server"`
	Analyze AnalyzeCmd `cmd:"" help:"Run one keyword analysis and print the results"`
	List    ListCmd    `cmd:"" help:"List all stored analyses"`
	Export  ExportCmd  `cmd:"" help:"Export a completed analysis"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr   string        `default:":8080" help:"HTTP listen address"`
	Delay  time.Duration `default:"500ms" help:"Pause between competitor fetches"`
	Gemini bool          `help:"Use Gemini instead of the Natural Language API for entities and sentiment"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	Keyword   string        `arg:"" help:"Keyword to analyze"`
	Country   string        `default:"US" help:"Country code for localized search results"`
	Language  string        `default:"en" help:"Language code for localized search results"`
	Entities  bool          `help:"Extract named entities from competitor content"`
	Sentiment bool          `help:"Score sentiment of competitor content"`
	Gemini    bool          `help:"Use Gemini instead of the Natural Language API for entities and sentiment"`
	Delay     time.Duration `default:"500ms" help:"Pause between competitor fetches"`
	Timeout   time.Duration `default:"5m" help:"Give up waiting for the analysis after this long"`

	// PollInterval is how often the command checks for completion.
	// Tests shrink it; the flag default suits interactive use.
	PollInterval time.Duration `default:"500ms" help:"Interval between progress checks"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID     int64  `arg:"" help:"Analysis ID"`
	Format string `short:"f" default:"json" enum:"csv,json,html,fullcontent" help:"Export format"`
	Output string `short:"o" help:"Write to a file instead of stdout"`
}
