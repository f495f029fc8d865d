package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/Jonah-Douglas/Campfire/internal/config"
	httpx "github.com/Jonah-Douglas/Campfire/internal/http"
	"github.com/Jonah-Douglas/Campfire/internal/http/handlers"
	"github.com/Jonah-Douglas/Campfire/internal/http/middleware"
)

// Run wires the container, seeds authorization policies, starts the cleanup
// worker and serves HTTP until SIGINT/SIGTERM.
func Run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := seedPolicies(c.Casbin.E, logger); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(c.AuthSvc)
	userH := handlers.NewUserHandlers(c.UserSvc)
	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.UserRepo)
	casbinMW := middleware.NewCasbinMW(c.Casbin.E, cfg.OwnershipRules)

	router := httpx.BuildRouter(authH, userH, jwtMW, casbinMW)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go c.CleanupSvc.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

var defaultPolicies = [][3]string{
	{"role_superuser", "/users", "(GET|POST|PATCH|DELETE)"},
	{"role_superuser", "/users/*", "(GET|POST|PATCH|DELETE)"},
	{"role_user", "/users/me/complete-profile", "PATCH"},
	{"role_owner", "/users/*", "GET"},
}

// seedPolicies installs the default role policies on first boot. Existing
// policies in the adapter's table win. A partial seed would leave every
// non-owner request denied, so any failure aborts startup.
func seedPolicies(e *casbin.Enforcer, logger *slog.Logger) error {
	policies, err := e.GetPolicy()
	if err != nil {
		return fmt.Errorf("read existing policies: %w", err)
	}
	if len(policies) > 0 {
		return nil
	}

	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("add policy %v: %w", p, err)
		}
	}
	if err := e.SavePolicy(); err != nil {
		return fmt.Errorf("persist seeded policies: %w", err)
	}
	logger.Info("casbin: seeded default policies")
	return nil
}
