package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/progress"
	"github.com/notaprep/notaprep/internal/quizgen"
)

var finalCmd = &cobra.Command{
	Use:   "final",
	Short: "Take the final assessment (requires completing every lesson)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		user := resolveUser(cmd)
		tracker := progress.NewTracker(st.ProgressRepo(), st.SessionRepo(), st.FinalRepo(),
			st.LessonRepo(), progress.DefaultConfig())

		ok, missing, err := tracker.AllowFinal(cmd.Context(), user)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Not eligible yet: %d lesson(s) incomplete (%s).\n",
				len(missing), strings.Join(missing, ", "))
			return nil
		}

		provider, err := buildProvider(cmd, st)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		gen := quizgen.New(provider, st.LessonRepo(), quizgen.DefaultConfig())
		quiz, err := gen.GenerateFinal(cmd.Context(), user)
		if err != nil {
			return err
		}
		if quiz.Partial {
			fmt.Println("Note: the question service was unavailable, this assessment is shorter than usual.")
		}
		fmt.Printf("Final assessment: %d questions. Good luck.\n", len(quiz.Items))

		answers, err := askAnswers(cmd.InOrStdin(), cmd.OutOrStdout(), quiz.Items)
		if err != nil {
			return err
		}

		attempt, err := tracker.SubmitFinal(cmd.Context(), user, quiz, answers)
		if err != nil {
			return err
		}

		fmt.Printf("\nAttempt %d: %.0f%%\n", attempt.Attempt, attempt.Score*100)
		if attempt.Passed {
			fmt.Println("Passed. Congratulations!")
		} else {
			fmt.Println("Not passed. You can retake the assessment any time.")
		}
		return nil
	},
}
