package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/webfusionlab/webfusion/internal/config"
	"github.com/webfusionlab/webfusion/internal/mailer"
	"github.com/webfusionlab/webfusion/internal/ratelimit"
	"github.com/webfusionlab/webfusion/internal/server"
	"github.com/webfusionlab/webfusion/internal/service"
	"github.com/webfusionlab/webfusion/internal/store"
)

// devSeedPassword is the seed admin password used outside production when
// SEED_ADMIN_PASSWORD is not set.
const devSeedPassword = "admin123"

// mailVerifyTimeout bounds the startup probe of the mail transport.
const mailVerifyTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Connect to the database, apply migrations, seed the first admin and serve the REST API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().IntP("port", "p", 3000, "HTTP listen port (env PORT)")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host (env HOST)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, os.Stderr)

	// 1. Database
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("database ready", "driver", st.Dialect())

	// 2. First admin
	seedAdmin(ctx, st, cfg, logger)

	// 3. Auth
	tokens := service.NewTokenService(service.TokenOptions{
		Secret:     cfg.Auth.JWTSecret,
		Production: cfg.Production(),
		TTL:        cfg.Auth.JWTTTL,
	})
	switch {
	case !tokens.Configured():
		logger.Error("JWT_SECRET is not set; admin logins will fail until it is configured")
	case cfg.Auth.JWTSecret == "":
		logger.Warn("JWT_SECRET is not set; signing tokens with the development secret")
	}
	if cfg.Production() && cfg.Auth.RegistrationToken == "" {
		logger.Info("admin registration disabled (ADMIN_REGISTRATION_TOKEN not set)")
	}
	accounts := service.NewAccountService(st, tokens, service.AccountOptions{
		Production:        cfg.Production(),
		RegistrationToken: cfg.Auth.RegistrationToken,
	})

	// 4. Mail
	mail := newMailer(cfg, logger)
	verifyCtx, cancel := context.WithTimeout(ctx, mailVerifyTimeout)
	if !mail.VerifyConnection(verifyCtx) {
		logger.Warn("could not verify the mail transport; contact emails may fail")
	}
	cancel()

	// 5. HTTP server
	srv := server.New(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.AllowedOrigins(),
		Version:         versionString(),
	}, server.Deps{
		Store:    st,
		Tokens:   tokens,
		Accounts: accounts,
		Mailer:   mail,
		Limiter:  ratelimit.New(nil, ratelimit.DefaultZones()...),
	}, logger)

	envName := "development"
	if cfg.Production() {
		envName = "production"
	}
	fmt.Printf("→ WebFusionLab API %s (%s)\n", versionString(), envName)
	fmt.Printf("→ Listening on http://%s\n", cfg.Server.Addr())
	fmt.Printf("→ Health:     http://%s/healthz\n", cfg.Server.Addr())
	fmt.Println()

	return srv.ListenAndServe()
}

// newMailer builds the Mailer for the configured provider. A provider that
// cannot be built leaves the API running with email disabled.
func newMailer(cfg config.Config, logger *slog.Logger) *mailer.Mailer {
	sender, err := mailer.NewSender(cfg.Mail, logger)
	if err != nil {
		logger.Warn("email disabled", "provider", cfg.Mail.Provider, "error", err)
		sender = mailer.UnavailableSender{Err: err}
	}
	return mailer.New(sender, mailerOptions(cfg, logger))
}

func mailerOptions(cfg config.Config, logger *slog.Logger) mailer.Options {
	return mailer.Options{
		SenderName:  cfg.Mail.SenderName,
		SenderEmail: cfg.Mail.SenderEmail,
		AdminEmail:  cfg.Mail.AdminEmail,
		Logger:      logger,
	}
}

// seedAdmin creates the configured first admin when the admins table is
// empty. Failures are logged; the server still starts.
func seedAdmin(ctx context.Context, st *store.Store, cfg config.Config, logger *slog.Logger) {
	if !cfg.Seed.Enabled {
		return
	}
	pw := cfg.Seed.Password
	if pw == "" {
		if cfg.Production() {
			logger.Warn("SEED_ADMIN_PASSWORD is not set; skipping the initial admin")
			return
		}
		pw = devSeedPassword
	}

	created, err := st.SeedAdmin(ctx, cfg.Seed.Email, pw, cfg.Seed.Name)
	if err != nil {
		logger.Error("seed admin failed", "error", err)
		return
	}
	if !created {
		return
	}
	logger.Info("initial admin created", "email", cfg.Seed.Email)
	if pw == devSeedPassword {
		logger.Warn("initial admin uses the default development password; change it with 'webfusion admin passwd'")
	}
}
