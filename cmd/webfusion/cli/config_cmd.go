package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/webfusionlab/webfusion/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the API configuration",
		Long:  "Write a default configuration file or display the effective configuration with secrets masked.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default webfusion.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")

	return cmd
}

func runConfigInit(force bool) error {
	path := configFileName
	if cfgFile != "" {
		path = cfgFile
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Set JWT_SECRET and the SMTP_* variables before running in production.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}
}

func runConfigShow() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if path := configPath(); path != "" {
		fmt.Printf("# Config file: %s\n", path)
	} else {
		fmt.Println("# No config file found; showing defaults and environment")
	}

	out, err := cfg.Redacted().YAML()
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
