package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/catalogsync/internal/auth"
	"github.com/law-makers/catalogsync/internal/ui"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage stored source shop credentials",
	Long: `Stores the source shop password in the system keyring (or a 0600 file
under ~/.catalogsync when no keyring is available), so it does not have to
live in .env. The stored password is used when SITE_PASSWORD is unset.`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set [login]",
	Short: "Store the password for a login",
	Example: `  # Prompt for the password of SITE_LOGIN
  catalogsync credentials set

  # Pipe it in
  echo "$PASS" | catalogsync credentials set buyer@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		login := a.Config.Login
		if len(args) == 1 {
			login = args[0]
		}
		if login == "" {
			return fmt.Errorf("login required: pass it as an argument or set SITE_LOGIN")
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			fmt.Fprintf(os.Stderr, "Password for %s: ", login)
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return fmt.Errorf("empty password")
		}

		if err := a.Credentials.Save(auth.Credentials{Login: login, Password: password}); err != nil {
			return err
		}
		fmt.Printf("%s credentials for %s\n", ui.Success("Stored"), login)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete [login]",
	Short: "Remove the stored password for a login",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		login := a.Config.Login
		if len(args) == 1 {
			login = args[0]
		}
		if login == "" {
			return fmt.Errorf("login required: pass it as an argument or set SITE_LOGIN")
		}

		if err := a.Credentials.Delete(login); err != nil {
			return err
		}
		fmt.Printf("%s credentials for %s\n", ui.Success("Deleted"), login)
		return nil
	},
}

func init() {
	credentialsSetCmd.Flags().String("password", "", "Password to store (read from stdin when omitted)")
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}
