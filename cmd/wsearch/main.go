package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mgomes/weavesearch/internal/cohere"
	"github.com/mgomes/weavesearch/internal/config"
	"github.com/mgomes/weavesearch/internal/fallback"
	"github.com/mgomes/weavesearch/internal/kb"
	"github.com/mgomes/weavesearch/internal/logger"
	"github.com/mgomes/weavesearch/internal/metrics"
	"github.com/mgomes/weavesearch/internal/search"
	"github.com/mgomes/weavesearch/internal/tui"
)

func main() {
	query := flag.String("q", "", "search query (skips the prompt)")
	pick := flag.String("pick", "", "document key to open (skips the picker)")
	plain := flag.Bool("plain", false, "print the chosen document to stdout instead of a pager")
	doSetup := flag.Bool("setup", false, "run setup wizard")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *doSetup {
		if err := runSetup(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ctx = logger.ContextWithLogger(ctx, log)

	if err := runSearch(ctx, cfg, *query, *pick, *plain); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("search failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	path := cfg.LogFile
	if path == "" {
		p, err := config.LogPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(path, level)
}

func runSearch(ctx context.Context, cfg *config.Config, query, pick string, plain bool) error {
	table, err := fallback.Default()
	if err != nil {
		return fmt.Errorf("load fallback table: %w", err)
	}

	term := tui.NewTerminal()
	m := metrics.New()

	deps := search.Deps{
		Prompter: term,
		Retriever: kb.NewClient(kb.Config{
			ServiceURL:    cfg.ServiceURL,
			APIKey:        cfg.APIKey,
			EnvironmentID: cfg.EnvironmentID,
			CollectionID:  cfg.CollectionID,
			APIVersion:    cfg.APIVersion,
			Count:         cfg.ResultCount,
			Timeout:       cfg.Timeout(),
		}),
		Parser:   search.ParserFunc(kb.Parse),
		Fallback: table,
		Picker:   term,
		Display:  term,
		Notifier: term,
		Metrics:  m,
	}

	if query != "" {
		deps.Prompter = fixedPrompter(query)
	}
	if pick != "" {
		deps.Picker = fixedPicker(pick)
	}
	if plain {
		deps.Display = tui.WriterDisplay{W: os.Stdout}
	}
	if cfg.CohereAPIKey != "" {
		deps.Ranker = cohere.NewClient(cfg.CohereAPIKey, cfg.RerankModel)
	}

	runErr := search.New(deps).Run(ctx)

	if cfg.MetricsFile != "" {
		if err := m.WriteFile(cfg.MetricsFile); err != nil {
			logger.FromContext(ctx).Warn("failed to write metrics", zap.Error(err))
		}
	}

	return runErr
}

// fixedPrompter answers the prompt with a query given on the command line.
type fixedPrompter string

func (p fixedPrompter) Prompt(context.Context) (string, error) {
	return string(p), nil
}

// fixedPicker selects a key given on the command line.
type fixedPicker string

func (p fixedPicker) Pick(context.Context, []string) (string, error) {
	return string(p), nil
}

func runSetup(cfg *config.Config) error {
	model := newSetupRunner(cfg)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	if runner, ok := finalModel.(setupRunner); ok {
		if runner.apiKey != "" && runner.serviceURL != "" {
			return config.SaveCredentials(runner.apiKey, runner.serviceURL)
		}
	}

	return fmt.Errorf("setup cancelled")
}

type setupRunner struct {
	setupModel tui.SetupModel
	cfg        *config.Config
	apiKey     string
	serviceURL string
}

func newSetupRunner(cfg *config.Config) setupRunner {
	return setupRunner{
		setupModel: tui.NewSetupModel(),
		cfg:        cfg,
	}
}

func (m setupRunner) Init() tea.Cmd {
	return tea.Batch(m.setupModel.Init(), tea.EnableBracketedPaste)
}

func (m setupRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.SetupSubmitMsg:
		client := kb.NewClient(kb.Config{
			ServiceURL: msg.ServiceURL,
			APIKey:     msg.APIKey,
			APIVersion: m.cfg.APIVersion,
			Timeout:    m.cfg.Timeout(),
		})
		if err := client.Validate(context.Background()); err != nil {
			newModel, _ := m.setupModel.Update(tui.SetupErrorMsg{Error: err.Error()})
			if sm, ok := newModel.(tui.SetupModel); ok {
				m.setupModel = sm
			}
			return m, nil
		}

		m.apiKey = msg.APIKey
		m.serviceURL = msg.ServiceURL
		return m, tea.Quit

	default:
		newModel, cmd := m.setupModel.Update(msg)
		if sm, ok := newModel.(tui.SetupModel); ok {
			m.setupModel = sm
		}
		return m, cmd
	}
}

func (m setupRunner) View() string {
	return m.setupModel.View()
}

func printUsage() {
	fmt.Println("wsearch - knowledge-base search")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wsearch                         Prompt for a query and browse results")
	fmt.Println("  wsearch -q \"query\"              Search without the prompt")
	fmt.Println("  wsearch -q \"query\" -pick KEY    Open one document directly")
	fmt.Println("  wsearch -plain                  Print the document instead of paging it")
	fmt.Println("  wsearch -setup                  Run setup wizard")
	fmt.Println("  wsearch -v                      Debug logging")
	fmt.Println()
	fmt.Println("Queries containing \"help\" list built-in help topics (help list, help sort).")
	fmt.Println()
	fmt.Println(config.Usage())
}
