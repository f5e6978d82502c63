package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/webfusionlab/webfusion/internal/mailer"
)

func newMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Check the email transport",
		Long:  "Verify the configured mail provider and send test messages.",
	}

	cmd.AddCommand(newMailVerifyCmd())
	cmd.AddCommand(newMailSendTestCmd())

	return cmd
}

// ---------- mail verify ----------

func newMailVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Probe the configured mail transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, os.Stderr)

			sender, err := mailer.NewSender(cfg.Mail, logger)
			if err != nil {
				return fmt.Errorf("mail provider %q: %w", cfg.Mail.Provider, err)
			}
			m := mailer.New(sender, mailerOptions(cfg, logger))

			ctx, cancel := context.WithTimeout(cmdContext(cmd), mailVerifyTimeout)
			defer cancel()
			if !m.VerifyConnection(ctx) {
				return fmt.Errorf("mail transport %q is not reachable", cfg.Mail.Provider)
			}
			fmt.Printf("Mail transport %q OK\n", cfg.Mail.Provider)
			return nil
		},
	}
}

// ---------- mail send-test ----------

func newMailSendTestCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:     "send-test",
		Short:   "Send a test email",
		Example: `  webfusion mail send-test --to you@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, os.Stderr)

			sender, err := mailer.NewSender(cfg.Mail, logger)
			if err != nil {
				return fmt.Errorf("mail provider %q: %w", cfg.Mail.Provider, err)
			}
			m := mailer.New(sender, mailerOptions(cfg, logger))

			ctx, cancel := context.WithTimeout(cmdContext(cmd), 30*time.Second)
			defer cancel()
			id, err := m.Send(ctx, mailer.Message{
				To:      to,
				Subject: "WebFusionLab: email de teste",
				HTML:    "<p>Este é um email de teste enviado pela API WebFusionLab.</p>",
			})
			if err != nil {
				return fmt.Errorf("send test email: %w", err)
			}
			fmt.Printf("Sent test email to %s (message id %s)\n", to, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	cmd.MarkFlagRequired("to")

	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
