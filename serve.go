package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecopredict/controllers"
	"ecopredict/services"
	"ecopredict/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scoring API and the ops server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve()
		},
	}
}

func (a *app) serve() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.memoryStore != nil {
		if err := a.memoryStore.Refresh(ctx); err != nil {
			return err
		}
		scheduler, err := services.NewRefreshSchedulerService(ctx, a.memoryStore, a.cfg.Dataset.RefreshCron)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	gin.SetMode(gin.ReleaseMode)

	var limiter *utils.RateLimiter
	if a.cfg.Server.RateLimit > 0 {
		limiter = utils.NewRateLimiter(a.cfg.Server.RateLimit, time.Minute)
	}

	api := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      controllers.NewRouter(controllers.NewSolvencyController(a.service, a.cfg.History.RecentLimit), limiter),
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ops := &http.Server{
		Addr:        fmt.Sprintf(":%d", a.cfg.Server.OpsPort),
		Handler:     controllers.NewOpsRouter(controllers.NewOpsController(a.checks)),
		ReadTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 2)
	for _, srv := range []*http.Server{api, ops} {
		go func(srv *http.Server) {
			utils.LogInfo("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}(srv)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case runErr = <-serverErr:
		utils.LogError("server failed: %v", runErr)
	case sig := <-quit:
		utils.LogInfo("received %s, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, srv := range []*http.Server{api, ops} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.LogError("shutdown %s: %v", srv.Addr, err)
		}
	}

	utils.LogInfo("server exited")
	return runErr
}
