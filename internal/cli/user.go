// filepath: internal/cli/user.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"adreel/internal/logging"
	"adreel/internal/services"

	"github.com/spf13/cobra"
)

var (
	userEmail    string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account that can log in with Basic credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserAdd(cmd.Context())
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserList(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)

	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address used as the login name.")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Initial password. (Env: ADREEL_USER_PASSWORD)")
	_ = userAddCmd.MarkFlagRequired("email")
}

func runUserAdd(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	password := userPassword
	if password == "" {
		password = os.Getenv("ADREEL_USER_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("a password is required (--password or ADREEL_USER_PASSWORD)")
	}

	repo, err := openRepository(true)
	if err != nil {
		return err
	}
	defer repo.Close()

	user, err := services.NewUserService(repo).CreateUser(ctx, userEmail, password)
	if err != nil {
		return err
	}
	logging.Log.Infof("Created user '%s' (%s).", user.Email, user.ID)
	return nil
}

func runUserList(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := openRepository(false)
	if err != nil {
		return err
	}
	defer repo.Close()

	users, err := services.NewUserService(repo).GetUsers(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, strings.ToLower(u.Email), u.CreatedAt.Local().Format(time.DateTime)})
	}
	renderTable(os.Stdout, []string{"ID", "Email", "Created"}, rows)
	return nil
}
