// Command lexuse finds usage-example sentences for lexeme forms in the
// Riksdagen open-data corpus and records operator-approved examples on
// Wikidata.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dpriskorn/LexUse/internal/riksdagen"
	"github.com/dpriskorn/LexUse/internal/wikidata"
	"github.com/dpriskorn/LexUse/pkg/lexuse"
	"github.com/dpriskorn/LexUse/pkg/lexuse/config"
	"github.com/dpriskorn/LexUse/pkg/lexuse/store"
	"github.com/dpriskorn/LexUse/pkg/lexuse/store/memstore"
	"github.com/dpriskorn/LexUse/pkg/lexuse/store/sqlite"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lexuse",
		Short: "Semi-automatically add usage examples to lexemes",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive harvesting session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logLevel, configPath)
		},
	}
	rootCmd.AddCommand(runCmd)
	return rootCmd
}

func run(ctx context.Context, logLevel, configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.TryLoadFromDisk(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "config:", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	logger, err := buildLogger(logLevel, cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	creds, err := config.CredentialsFromEnv()
	if err != nil {
		return err
	}

	session, err := wikidata.NewSession(wikidata.DefaultAPIURL, creds)
	if err != nil {
		return err
	}
	fmt.Println("Logging in...")
	if err := session.Login(ctx); err != nil {
		return err
	}

	corpusLog := log.Named("corpus")
	if !cfg.Debug.Corpus {
		corpusLog = corpusLog.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}

	history, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer history.Close()

	harvester, err := lexuse.New(lexuse.Options{
		Queries: &wikidata.QueryClient{
			LanguageQID:  cfg.LanguageQID,
			LanguageCode: cfg.LanguageCode,
			ResultSize:   cfg.QueryResultSize,
			Offset:       cfg.QueryOffset,
			Log:          log.Named("queries"),
		},
		Senses: &wikidata.QueryClient{
			LanguageQID:  cfg.LanguageQID,
			LanguageCode: cfg.LanguageCode,
			Log:          log.Named("senses"),
		},
		Corpus: &riksdagen.Client{
			MaxResults: cfg.CorpusMaxResults,
			Log:        corpusLog,
		},
		Recorder: wikidata.NewRecorder(session, log.Named("recorder")),
		History:  history,
		Settings: cfg,
		In:       os.Stdin,
		Out:      os.Stdout,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	return harvester.Run(ctx)
}

// buildLogger constructs the console logger. Any per-stage debug toggle
// forces the debug level on the root logger; the stages without a toggle
// stay at info.
func buildLogger(level string, cfg *config.Settings) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	d := cfg.Debug
	if d.Summaries || d.Sentences || d.Excludes || d.Duplicates || d.Corpus || d.Senses {
		lvl = zapcore.DebugLevel
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func openHistory(ctx context.Context, cfg *config.Settings) (store.Store, error) {
	if cfg.HistoryDB == "" {
		return memstore.New(), nil
	}
	return sqlite.Open(ctx, cfg.HistoryDB)
}
