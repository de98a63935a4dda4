package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

var classCmd = &cobra.Command{
	Use:   "class",
	Short: "Manage tracked classes",
	Long: `List the classes known locally and choose which ones take part in
'cohort sync' and scheduled syncs. Classes are addressed by friendly id or
provider id.`,
	RunE: runClassList,
}

var classListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known classes",
	RunE:  runClassList,
}

var classDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Fetch the class list from OpenClass",
	RunE:  runClassDiscover,
}

var classActivateCmd = &cobra.Command{
	Use:   "activate <class>",
	Short: "Include a class in sync runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassActivate,
}

var classDeactivateCmd = &cobra.Command{
	Use:   "deactivate <class>",
	Short: "Exclude a class from sync runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassDeactivate,
}

func init() {
	classCmd.AddCommand(classListCmd)
	classCmd.AddCommand(classDiscoverCmd)
	classCmd.AddCommand(classActivateCmd)
	classCmd.AddCommand(classDeactivateCmd)
	rootCmd.AddCommand(classCmd)
}

func runClassList(cmd *cobra.Command, _ []string) error {
	if classService == nil {
		return errors.New("class service not configured")
	}

	classes, err := classService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list classes: %w", err)
	}

	if len(classes) == 0 {
		cmd.Println("No classes yet. Run 'cohort init' or 'cohort class discover'.")
		return nil
	}

	printClasses(cmd, classes)
	return nil
}

func runClassDiscover(cmd *cobra.Command, _ []string) error {
	if classService == nil {
		return errors.New("class service not configured")
	}

	classes, err := classService.Discover(commandContext(cmd))
	if err != nil {
		if hint := describeError(err); hint != "" {
			cmd.PrintErrln(hint)
		}
		return fmt.Errorf("class discovery failed: %w", err)
	}

	printClasses(cmd, classes)
	return nil
}

func runClassActivate(cmd *cobra.Command, args []string) error {
	if classService == nil {
		return errors.New("class service not configured")
	}

	class, err := classService.Activate(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to activate class: %w", err)
	}

	cmd.Printf("Class %s (%s) activated.\n", class.Ref(), class.Name)
	return nil
}

func runClassDeactivate(cmd *cobra.Command, args []string) error {
	if classService == nil {
		return errors.New("class service not configured")
	}

	class, err := classService.Deactivate(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to deactivate class: %w", err)
	}

	cmd.Printf("Class %s (%s) deactivated.\n", class.Ref(), class.Name)
	return nil
}

func printClasses(cmd *cobra.Command, classes []domain.Class) {
	cmd.Printf("%-20s %-8s %-20s %s\n", "CLASS", "ACTIVE", "LAST SYNC", "NAME")
	for i := range classes {
		c := &classes[i]
		active := "no"
		if c.IsActive {
			active = "yes"
		}
		cmd.Printf("%-20s %-8s %-20s %s\n", c.Ref(), active, formatTime(c.SyncedAt), c.Name)
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
