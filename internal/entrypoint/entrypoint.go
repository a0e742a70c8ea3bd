package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/readworld/internal/config"
	http_controllers "github.com/mrlokans/readworld/internal/http"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after the last request so its writes are kept.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Readworld v%s", version)

	app, err := Build(cfg, true)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	if !app.Account.Available() {
		log.Printf("WARNING: account API is not configured. Register/login endpoints will report the service as unavailable.")
	}

	routerCfg := http_controllers.RouterConfig{
		Store:         app.Store,
		Catalog:       app.Catalog,
		Covers:        app.Covers,
		Library:       app.Library,
		Annotations:   app.Annotations,
		Achievements:  app.Achievements,
		Streak:        app.Streak,
		Reader:        app.Reader,
		Settings:      app.Settings,
		Notifications: app.Notifications,
		Account:       app.Account,
		Storage:       app.Records,
		Database:      app.Database,
		Audit:         app.Audit,
		Version:       version,
	}

	var taskCtxCancel context.CancelFunc
	if app.Tasks != nil {
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		app.Tasks.Start(taskCtx)
		routerCfg.TaskQueue = app.Tasks
	}

	if app.Scheduler != nil {
		if err := app.Scheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: rollover scheduler not started: %v", err)
		} else {
			routerCfg.Scheduler = app.Scheduler
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if app.Scheduler != nil {
			app.Scheduler.Stop()
		}
		if err := app.Store.Save(ctx); err != nil {
			log.Printf("Error saving reading state: %v", err)
		}
		if app.Tasks != nil && taskCtxCancel != nil {
			app.Tasks.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
