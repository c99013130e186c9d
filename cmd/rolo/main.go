package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rolo/cmd/rolo/chat"
	prefscfg "rolo/cmd/rolo/config"
	"rolo/cmd/rolo/ui"
	"rolo/internal/book"
	"rolo/internal/command"
	appcfg "rolo/internal/config"
	"rolo/internal/logging"
	"rolo/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lpernett/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

var (
	// Global flags
	verbose    bool
	dataDir    string
	configPath string
	noColor    bool

	// Resolved at PersistentPreRunE
	cfg    *appcfg.Config
	logger *zap.Logger
)

// rootCmd represents the base command. Running rolo with no subcommand
// starts the interactive session.
var rootCmd = &cobra.Command{
	Use:   "rolo",
	Short: "rolo - a terminal contact-book assistant",
	Long: `rolo is a console bot helper: it reads commands from the keyboard and
manages an address book of contacts, phones, emails, birthdays and notes.

Run without arguments to start the interactive session. One-shot
subcommands (contacts, birthdays, export, import, sessions) perform a
single operation against the same book and exit.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env never overrides variables already set in the environment.
		_ = godotenv.Load()

		if err := resolvePaths(); err != nil {
			return err
		}

		var err error
		cfg, err = appcfg.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.Storage.DatabasePath = appcfg.ResolvePath(dataDir, cfg.Storage.DatabasePath)
		cfg.Storage.ImportDir = appcfg.ResolvePath(dataDir, cfg.Storage.ImportDir)
		cfg.Storage.ExportDir = appcfg.ResolvePath(dataDir, cfg.Storage.ExportDir)

		logDir := filepath.Join(dataDir, "logs")
		if err := logging.Initialize(logDir, logging.Options{
			Debug:      cfg.Logging.Debug,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		if err := logging.InitAudit(logDir); err != nil {
			return fmt.Errorf("failed to initialize audit trail: %w", err)
		}

		// Interactive mode owns the terminal; zap would scribble over
		// the TUI, so it only backs the one-shot subcommands.
		if isInteractive(cmd) {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAudit()
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start the interactive session (the default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List every contact",
	RunE:  runContacts,
}

var birthdaysCmd = &cobra.Command{
	Use:   "birthdays",
	Short: "List upcoming congratulation dates",
	RunE:  runBirthdays,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the book to a JSON snapshot file",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Merge a JSON snapshot into the book",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past interactive sessions",
	RunE:  runSessions,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rolo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rolo %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: ~/.rolo, or ROLO_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <data-dir>/config.yaml, or ROLO_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")

	contactsCmd.Flags().String("format", "table", "Output format: table or json")
	birthdaysCmd.Flags().Int("days", 0, "Lookahead horizon in days (default: config value)")
	exportCmd.Flags().String("out", "", "Snapshot path (default: exports/rolo-<timestamp>.json)")
	sessionsCmd.Flags().Int("limit", 20, "Number of sessions to list")

	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(birthdaysCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolvePaths settles the data directory and config path from flags,
// environment, and defaults, and makes sure the data directory exists.
func resolvePaths() error {
	if dataDir == "" {
		dataDir = os.Getenv("ROLO_DATA_DIR")
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".rolo")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("ROLO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.yaml")
	}
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd.Name() == "rolo" || cmd.Name() == "interactive"
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.Storage.DatabasePath)
}

func styles() ui.Styles {
	if noColor {
		return ui.Styles{}
	}
	return ui.DefaultStyles()
}

func runInteractive() error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	prefs, err := prefscfg.Load(prefscfg.PrefsFile(dataDir))
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("Preferences unreadable, using defaults: %v", err)
	}

	m := chat.New(chat.Deps{
		Store:   s,
		Config:  cfg,
		Prefs:   prefs,
		DataDir: dataDir,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	return nil
}

func runContacts(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.LoadContacts(context.Background())
	if err != nil {
		return err
	}
	logger.Debug("Loaded contacts", zap.Int("count", len(records)))

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		snap := book.TakeSnapshot(bookFrom(records, nil))
		data, err := json.MarshalIndent(snap.Contacts, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(ui.ContactTable(styles(), records))
	return nil
}

func runBirthdays(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := store.LoadBook(context.Background(), s)
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = cfg.Book.BirthdayHorizonDays
	}
	reminders := b.UpcomingBirthdays(time.Now(), days)
	logger.Debug("Computed reminders", zap.Int("count", len(reminders)), zap.Int("days", days))

	fmt.Println(ui.ReminderList(styles(), reminders))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := store.LoadBook(context.Background(), s)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(cfg.Storage.ExportDir, "rolo-"+time.Now().Format("20060102-150405")+".json")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	snap := book.TakeSnapshot(b)
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	logger.Info("Snapshot written", zap.String("path", out),
		zap.Int("contacts", len(snap.Contacts)), zap.Int("notes", len(snap.Notes)))
	fmt.Printf("Exported %d contacts and %d notes to %s\n", len(snap.Contacts), len(snap.Notes), out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	b, err := store.LoadBook(ctx, s)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	it := command.New(b, command.WithStore(s))
	res, err := it.ImportSnapshot(ctx, data)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	logger.Info("Snapshot imported", zap.String("path", args[0]),
		zap.Int("added", res.ContactsAdded), zap.Int("merged", res.ContactsMerged))
	fmt.Printf("Imported %d new and %d updated contacts, %d new notes.\n",
		res.ContactsAdded, res.ContactsMerged, res.NotesAdded)
	return nil
}

func runSessions(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	sessions, err := s.ListSessions(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No session history.")
		return nil
	}

	for i, info := range sessions {
		id := info.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("%d. %s started %s, %d turns\n",
			i+1, id, info.StartedAt.Local().Format("2006-01-02 15:04"), info.Turns)
	}
	return nil
}

func bookFrom(records []*book.Record, notes []*book.Note) *book.Book {
	b := book.New()
	for _, rec := range records {
		b.Add(rec)
	}
	for _, n := range notes {
		_ = b.AddNote(n)
	}
	return b
}
