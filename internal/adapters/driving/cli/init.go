package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	initEmail    string
	initPassword string
	initAPIBase  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Store OpenClass credentials and discover classes",
	Long: `Writes OpenClass credentials to ~/.cohort-tracker/config.toml, logs in and
lists the classes visible to the account. Discovered classes start inactive;
activate the ones to follow with 'cohort class activate'.

The password is prompted for without echo when --password is omitted.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initEmail, "email", "", "OpenClass account email")
	initCmd.Flags().StringVar(&initPassword, "password", "", "OpenClass account password")
	initCmd.Flags().StringVar(&initAPIBase, "api-base", "", "OpenClass API base URL")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	email := initEmail
	if email == "" {
		cmd.Print("OpenClass email: ")
		email = readLine(reader)
	}
	if email == "" {
		return errors.New("email is required")
	}

	password := initPassword
	if password == "" {
		cmd.Print("OpenClass password: ")
		password = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
	}
	if password == "" {
		return errors.New("password is required")
	}

	if err := configStore.Set(keyEmail, email); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if err := configStore.Set(keyPassword, password); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if initAPIBase != "" {
		if err := configStore.Set(keyAPIBase, initAPIBase); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	cmd.Printf("Configuration saved to %s\n", configStore.Path())

	// The provider was built before the credentials existed.
	if err := rewire(cmd); err != nil {
		return err
	}

	cmd.Println("Discovering classes...")
	classes, err := classService.Discover(commandContext(cmd))
	if err != nil {
		if hint := describeError(err); hint != "" {
			cmd.PrintErrln(hint)
		}
		return fmt.Errorf("class discovery failed: %w", err)
	}

	printClasses(cmd, classes)
	cmd.Println("\nActivate classes with 'cohort class activate <class>', then run 'cohort sync'.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, fallback *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(fallback)
}
