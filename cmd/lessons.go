package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notaprep/notaprep/internal/content"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List lessons in the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		lessons, err := st.LessonRepo().ListLessons(cmd.Context())
		if err != nil {
			return err
		}
		if len(lessons) == 0 {
			fmt.Println("No lessons. Import a corpus with: notaprep lessons import <file.csv>")
			return nil
		}
		for _, l := range lessons {
			fmt.Printf("%4s  %s\n", l.ID, l.Title)
		}
		return nil
	},
}

var lessonsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import lessons from a CSV corpus (No, Title, Content columns)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessons, err := content.LoadCSV(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.LessonRepo().Import(cmd.Context(), lessons); err != nil {
			return fmt.Errorf("import lessons: %w", err)
		}
		fmt.Printf("Imported %d lessons.\n", len(lessons))
		return nil
	},
}

var lessonsShowCmd = &cobra.Command{
	Use:   "show <lesson-id>",
	Short: "Print a lesson's full text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		l, err := st.LessonRepo().GetLesson(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Lesson %s: %s\n\n%s\n", l.ID, l.Title, l.Body)
		return nil
	},
}

var lessonsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the lessons most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		lessons, err := st.LessonRepo().ListLessons(cmd.Context())
		if err != nil {
			return err
		}

		topK, _ := cmd.Flags().GetInt("top")
		query := ""
		for i, a := range args {
			if i > 0 {
				query += " "
			}
			query += a
		}

		matches := content.NewIndex(lessons).Search(query, topK)
		if len(matches) == 0 {
			fmt.Println("No matching lessons.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%4s  %-40s  %.3f\n", m.Lesson.ID, m.Lesson.Title, m.Score)
		}
		return nil
	},
}

func init() {
	lessonsSearchCmd.Flags().Int("top", 3, "Number of results to show")

	lessonsCmd.AddCommand(lessonsImportCmd)
	lessonsCmd.AddCommand(lessonsShowCmd)
	lessonsCmd.AddCommand(lessonsSearchCmd)
}
