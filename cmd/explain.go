package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/explain"
)

var explainCmd = &cobra.Command{
	Use:   "explain <lesson-id>",
	Short: "Explain a lesson at a chosen depth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := buildProvider(cmd, st)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		depth, _ := cmd.Flags().GetString("depth")
		svc := explain.NewService(provider, st.LessonRepo(), explain.DefaultConfig())

		exp, err := svc.Explain(cmd.Context(), args[0], explain.Depth(depth))
		if err != nil {
			return err
		}

		if exp.Degraded {
			fmt.Printf("(showing the authored %s explanation; generation was unavailable)\n\n", exp.Depth)
		}
		fmt.Println(exp.Text)
		return nil
	},
}

func init() {
	explainCmd.Flags().String("depth", string(explain.DepthStandard),
		"Explanation depth: brief, standard or detailed")
}
