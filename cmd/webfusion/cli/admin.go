package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/webfusionlab/webfusion/internal/store"
)

// minPasswordLength applies to passwords set from the command line.
const minPasswordLength = 8

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin users",
		Long:  "Create, list and reset the passwords of the admins who manage the portfolio.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminPasswdCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin user",
		Example: `  webfusion admin create --email admin@example.com --name Ana --password secret123
  webfusion admin create --email admin@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(cmd.Context(), email, password, name)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.Flags().StringVar(&name, "name", "Admin", "Admin display name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminCreate(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	if password == "" {
		var err error
		if password, err = promptPassword("Password: "); err != nil {
			return err
		}
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	st, err := openCLIStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	admin, err := st.CreateAdmin(ctx, email, password, name)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return fmt.Errorf("an admin with email %q already exists", email)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created admin user %q (id %s)\n", admin.Email, admin.ID)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all admin users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(cmd.Context(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(ctx context.Context, jsonOutput bool) error {
	st, err := openCLIStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	admins, err := st.ListAdmins(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Println("No admin users configured. Use 'webfusion admin create' to create one.")
		return nil
	}

	fmt.Printf("%-36s %-30s %-24s %-8s\n", "ID", "EMAIL", "NAME", "ACTIVE")
	fmt.Printf("%-36s %-30s %-24s %-8s\n", "--", "-----", "----", "------")
	for _, a := range admins {
		active := "yes"
		if !a.IsActive {
			active = "no"
		}
		fmt.Printf("%-36s %-30s %-24s %-8s\n", a.ID, a.Email, a.Name, active)
	}

	return nil
}

// ---------- admin passwd ----------

func newAdminPasswdCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:     "passwd",
		Short:   "Reset an admin's password",
		Example: `  webfusion admin passwd --email admin@example.com  # prompts for the new password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminPasswd(cmd.Context(), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted if omitted)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminPasswd(ctx context.Context, email, password string) error {
	st, err := openCLIStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	admin, err := st.FindAdminByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no admin with email %q", email)
	}
	if err != nil {
		return err
	}

	if password == "" {
		if password, err = promptPassword("New password: "); err != nil {
			return err
		}
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := st.UpdateAdminCredentials(ctx, admin.ID, nil, &password); err != nil {
		return err
	}
	fmt.Printf("Password updated for %q\n", admin.Email)
	return nil
}

// promptPassword reads a password twice from the terminal without echo.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}

// openCLIStore opens the configured store for a one-off command.
func openCLIStore(ctx context.Context) (*store.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openStore(ctx, cfg)
}
