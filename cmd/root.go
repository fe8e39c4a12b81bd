package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/llm"
	"github.com/notaprep/notaprep/internal/ratelimit"
	"github.com/notaprep/notaprep/internal/respcache"
	"github.com/notaprep/notaprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "notaprep",
	Short: "Notary exam study companion",
	Long:  "NotaPrep — study lessons, take generated quizzes and pass the final assessment for the notary certification exam.",
}

func Execute() error {
	// A missing .env is fine; explicit env vars win either way.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides NOTAPREP_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner id (overrides NOTAPREP_USER env var)")

	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(finalCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then NOTAPREP_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveUser returns the learner id from --user, NOTAPREP_USER, or the
// fallback "default".
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	if u := os.Getenv("NOTAPREP_USER"); u != "" {
		return u
	}
	return "default"
}

// openStore opens the SQLite store for this invocation.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// buildProvider wires the full middleware chain: response cache (memory or
// SQLite per config), retry, rate limiter, audit logging, timeout.
func buildProvider(cmd *cobra.Command, st *store.Store) (llm.Provider, error) {
	cacheCfg := respcache.ConfigFromEnv()

	var cache respcache.Cache
	if cacheCfg.Backend == "sqlite" {
		cache = st.CacheRepo()
	} else {
		cache = respcache.NewMemory(cacheCfg.Capacity)
	}

	return llm.NewProviderFromEnv(cmd.Context(), llm.Deps{
		EventRepo: st.EventRepo(),
		Cache:     cache,
		CacheCfg:  cacheCfg,
		Limiter:   ratelimit.New(ratelimit.ConfigFromEnv()),
	})
}
