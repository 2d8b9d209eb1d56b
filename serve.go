package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/ternarybob/banner"

	"investment-research/auth"
	"investment-research/database"
	"investment-research/handlers"
	"investment-research/jobs"
	"investment-research/models"
)

func serveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *cfgFile, true)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.cfg.CheckServe(); err != nil {
				return err
			}

			banner.PrintSimple(appName, version)

			if err := seedAdmin(ctx, a); err != nil {
				return err
			}

			cleanup := jobs.NewCleanup(a.store, a.cfg.Reports.Dir, a.cfg.Reports.Retention, a.logger)
			sched, err := jobs.Start(ctx, a.cfg.Reports.CleanupSchedule, cleanup)
			if err != nil {
				return err
			}
			defer sched.Stop()

			gin.SetMode(a.cfg.Server.Mode)
			h := handlers.New(handlers.Options{
				Research:      a.research,
				Store:         a.store,
				Tokens:        a.tokens,
				Provider:      a.provider,
				DefaultFormat: a.reportFmt,
				Version:       version,
				Logger:        a.logger,
			})

			router, err := h.Router(a.cfg.Server.CORSOrigins)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              a.cfg.Server.Addr(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// seedAdmin creates the configured admin account when it does not exist yet.
func seedAdmin(ctx context.Context, a *app) error {
	name, password := a.cfg.Auth.AdminUsername, a.cfg.Auth.AdminPassword
	if name == "" || password == "" {
		return nil
	}
	if _, err := a.store.UserByUsername(ctx, name); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := a.store.CreateUser(ctx, &models.User{
		Username:     name,
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	}); err != nil {
		return err
	}
	a.logger.Info().Str("username", name).Msg("Admin user created")
	return nil
}
