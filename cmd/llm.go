package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Show LLM provider configuration and recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		cfg := llm.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			if discovered, ok := llm.DiscoverConfig(); ok {
				cfg = discovered
			} else {
				fmt.Println("No provider configured:", err)
				return nil
			}
		}
		fmt.Printf("Provider: %s\n", cfg.Provider)
		fmt.Printf("Timeout:  %s\n", cfg.Timeout)
		fmt.Printf("Retries:  %d\n", cfg.Retry.MaxAttempts)

		limit, _ := cmd.Flags().GetInt("events")
		events, err := st.EventRepo().Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("\nNo recorded requests.")
			return nil
		}

		fmt.Println("\nRecent requests:")
		for _, e := range events {
			status := "ok"
			if !e.Success {
				status = "error"
			}
			fmt.Printf("  %s  %-10s %-8s %5dms  in=%d out=%d  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Model, e.Purpose, e.LatencyMs, e.InputTokens, e.OutputTokens, status)
		}
		return nil
	},
}

func init() {
	llmCmd.Flags().Int("events", 10, "Number of recent requests to show")
}
