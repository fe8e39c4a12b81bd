package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/progress"
	"github.com/notaprep/notaprep/internal/quizgen"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <lesson-id>",
	Short: "Take a quiz for a lesson",
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

		user := resolveUser(cmd)
		lessonID := args[0]
		count, _ := cmd.Flags().GetInt("count")
		mode, _ := cmd.Flags().GetString("mode")

		gen := quizgen.New(provider, st.LessonRepo(), quizgen.DefaultConfig())
		tracker := progress.NewTracker(st.ProgressRepo(), st.SessionRepo(), st.FinalRepo(),
			st.LessonRepo(), progress.DefaultConfig())

		if _, err := tracker.OpenLesson(cmd.Context(), user, lessonID); err != nil {
			return err
		}

		quiz, err := gen.GenerateQuiz(cmd.Context(), user, lessonID, count, quizgen.Mode(mode))
		if err != nil {
			return err
		}
		if quiz.Partial {
			fmt.Println("Note: the question service was unavailable, this quiz is shorter than requested.")
		}

		answers, err := askAnswers(cmd.InOrStdin(), cmd.OutOrStdout(), quiz.Items)
		if err != nil {
			return err
		}

		session, err := tracker.SubmitQuiz(cmd.Context(), quiz, answers)
		if err != nil {
			return err
		}

		printResults(cmd.OutOrStdout(), quiz.Items, answers)
		fmt.Printf("\nScore: %.0f%% (%d questions)\n", session.Score*100, len(quiz.Items))
		if session.Score >= progress.DefaultConfig().LessonPassThreshold {
			fmt.Println("Lesson completed.")
		} else {
			fmt.Println("Below the completion threshold. Review the lesson and try again.")
		}
		return nil
	},
}

func init() {
	quizCmd.Flags().Int("count", 0, "Number of questions (0 picks from lesson length)")
	quizCmd.Flags().String("mode", "", "Generation mode: rule_only or hybrid")
}

// askAnswers presents each item and reads an A-D answer per question.
func askAnswers(in io.Reader, out io.Writer, items []quizgen.Item) ([]int, error) {
	reader := bufio.NewReader(in)
	answers := make([]int, len(items))

	for i, item := range items {
		fmt.Fprintf(out, "\nQ%d. %s\n", i+1, item.Question)
		for c, choice := range item.Choices {
			fmt.Fprintf(out, "  %c. %s\n", 'A'+c, choice)
		}

		for {
			fmt.Fprintf(out, "Your answer (A-%c): ", 'A'+len(item.Choices)-1)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return nil, fmt.Errorf("read answer: %w", err)
			}
			ans := strings.ToUpper(strings.TrimSpace(line))
			if len(ans) == 1 && ans[0] >= 'A' && int(ans[0]-'A') < len(item.Choices) {
				answers[i] = int(ans[0] - 'A')
				break
			}
			fmt.Fprintln(out, "Please answer with a letter.")
		}
	}
	return answers, nil
}

// printResults shows the correct answer and explanation for each miss.
func printResults(out io.Writer, items []quizgen.Item, answers []int) {
	for i, item := range items {
		if answers[i] == item.CorrectIndex {
			continue
		}
		fmt.Fprintf(out, "\nQ%d was %c: %s\n", i+1, 'A'+item.CorrectIndex, item.Choices[item.CorrectIndex])
		if item.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", item.Explanation)
		}
	}
}
