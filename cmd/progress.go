package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show lesson progress and final attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		user := resolveUser(cmd)
		tracker := progress.NewTracker(st.ProgressRepo(), st.SessionRepo(), st.FinalRepo(),
			st.LessonRepo(), progress.DefaultConfig())

		records, err := tracker.Overview(cmd.Context(), user)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No lessons in the corpus yet.")
			return nil
		}

		completed := 0
		for _, rec := range records {
			switch rec.Status {
			case progress.StatusCompleted:
				completed++
				fmt.Printf("%4s  completed    best %.0f%%  (%d attempts)\n",
					rec.LessonID, rec.BestScore*100, rec.Attempts)
			case progress.StatusInProgress:
				fmt.Printf("%4s  in progress  best %.0f%%  (%d attempts)\n",
					rec.LessonID, rec.BestScore*100, rec.Attempts)
			default:
				fmt.Printf("%4s  not started\n", rec.LessonID)
			}
		}
		fmt.Printf("\n%d of %d lessons completed.\n", completed, len(records))

		attempts, err := st.FinalRepo().ListAttempts(cmd.Context(), user)
		if err != nil {
			return err
		}
		for _, a := range attempts {
			verdict := "not passed"
			if a.Passed {
				verdict = "passed"
			}
			fmt.Printf("Final attempt %d: %.0f%% (%s)\n", a.Attempt, a.Score*100, verdict)
		}
		return nil
	},
}
