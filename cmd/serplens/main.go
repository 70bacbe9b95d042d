package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/serplens/serplens"
	"github.com/serplens/serplens/analyze"
	"github.com/serplens/serplens/gemini"
	"github.com/serplens/serplens/google"
	"github.com/serplens/serplens/goquery"
	serphttp "github.com/serplens/serplens/http"
	serpprom "github.com/serplens/serplens/prometheus"
	"github.com/serplens/serplens/scrape"
	serpslog "github.com/serplens/serplens/slog"
	"github.com/serplens/serplens/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	AnalysisService serplens.AnalysisService
	Runner          *analyze.Runner
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Runner != nil {
		if err := m.Runner.Close(); err != nil {
			return err
		}
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("serplens"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'serplens --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SERPLENS_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.AnalysisService = sqlite.NewAnalysisService(m.DB)
	m.Runner = &analyze.Runner{
		Store:  m.AnalysisService,
		Logger: deps.Logger,
	}
	deps.DB = m.DB
	deps.Analyses = m.AnalysisService
	deps.Runner = m.Runner

	// The serve and analyze commands drive the full pipeline and need the
	// external providers; list and export only read the store.
	if cmd == "serve" || cmd == "analyze" {
		apiKey := os.Getenv("GOOGLE_API_KEY")
		cseID := os.Getenv("GOOGLE_CSE_ID")
		if apiKey == "" || cseID == "" {
			fmt.Fprintln(stderr, "Set GOOGLE_API_KEY and GOOGLE_CSE_ID to enable search. Create credentials at https://developers.google.com/custom-search/v1/introduction")
			return fmt.Errorf("GOOGLE_API_KEY or GOOGLE_CSE_ID not set")
		}

		client, err := google.NewClient(apiKey, cseID)
		if err != nil {
			return fmt.Errorf("failed to create Google API client: %w", err)
		}
		m.Runner.Search = serpslog.NewLoggingSearchService(client, deps.Logger)
		m.Runner.Language = client

		useGemini := (cmd == "serve" && cli.Serve.Gemini) || (cmd == "analyze" && cli.Analyze.Gemini)
		if useGemini {
			geminiKey := os.Getenv("GEMINI_API_KEY")
			if geminiKey == "" {
				fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
				return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
			}
			geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  geminiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
				return fmt.Errorf("failed to connect to Gemini API: %w", err)
			}
			m.Runner.Language = gemini.NewLanguage(geminiClient)
		}

		delay := cli.Analyze.Delay
		if cmd == "serve" {
			delay = cli.Serve.Delay
		}
		m.Runner.Limiter = scrape.NewIntervalLimiter(delay)

		var fetcher serplens.Fetcher = serphttp.NewFetcher()
		if cmd == "serve" {
			metrics := serpprom.NewMetrics(prom.DefaultRegisterer)
			fetcher = serpprom.NewFetcher(fetcher, metrics)
			m.Runner.Observer = metrics
		}
		fetcher = serpslog.NewLoggingFetcher(fetcher, deps.Logger)

		m.Runner.Scraper = scrape.New(fetcher, goquery.NewExtractor(), scrape.WithLogger(deps.Logger))
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("SERPLENS_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "serplens.db"
	}
	dir := filepath.Join(home, ".serplens")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "serplens.db")
}
