package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

var (
	tagRegion string
	tagNight  string
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage local student metadata",
}

var studentTagCmd = &cobra.Command{
	Use:   "tag <first-name> <last-name>",
	Short: "Set roster region and night tags",
	Long: `Sets the region and night tags on every stored student with this name,
in every class. Names match case-insensitively. Sync never changes these tags.

An omitted flag clears that tag.`,
	Args: cobra.ExactArgs(2),
	RunE: runStudentTag,
}

func init() {
	studentTagCmd.Flags().StringVar(&tagRegion, "region", "", "region tag")
	studentTagCmd.Flags().StringVar(&tagNight, "night", "", "night tag, e.g. tuesday")
	studentCmd.AddCommand(studentTagCmd)
	rootCmd.AddCommand(studentCmd)
}

func runStudentTag(cmd *cobra.Command, args []string) error {
	if rosterService == nil {
		return errors.New("roster service not configured")
	}
	if tagRegion == "" && tagNight == "" {
		return fmt.Errorf("%w: set --region or --night", domain.ErrInvalidInput)
	}

	if err := rosterService.TagStudent(commandContext(cmd), args[0], args[1], tagRegion, tagNight); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no stored student named %s %s (run 'cohort sync' first)", args[0], args[1])
		}
		return fmt.Errorf("failed to tag student: %w", err)
	}

	cmd.Printf("Tagged %s %s: region=%s night=%s\n", args[0], args[1], orNotSet(tagRegion), orNotSet(tagNight))
	return nil
}
