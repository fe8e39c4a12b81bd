package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all progress for a learner",
	Long:  "Deletes the learner's progress records, quiz sessions and final attempts. The lesson corpus is untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete without --yes")
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		user := resolveUser(cmd)

		records, err := st.ProgressRepo().DeleteUser(ctx, user)
		if err != nil {
			return err
		}
		sessions, err := st.SessionRepo().DeleteUser(ctx, user)
		if err != nil {
			return err
		}
		finals, err := st.FinalRepo().DeleteUser(ctx, user)
		if err != nil {
			return err
		}

		fmt.Printf("Removed %d progress records, %d sessions, %d final attempts for %q.\n",
			records, sessions, finals, user)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
