package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	devMode    bool
	appVersion string // set in Execute, reported by the API root
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webfusion",
		Short: "WebFusionLab website API",
		Long: `WebFusionLab API: admin authentication, the project portfolio and the contact form.

Configuration is read from defaults, an optional webfusion.yaml, and environment
variables (PORT, DATABASE_URL, JWT_SECRET, SMTP_HOST, ...), in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./webfusion.yaml or ~/.webfusion/webfusion.yaml)")
	cmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Development mode (debug logging)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newMailCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}
