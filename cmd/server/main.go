package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"code-lab/domain"
	"code-lab/infrastructure/httpapi"
	"code-lab/infrastructure/ws"
	"code-lab/internal"
	"code-lab/observability"
	"code-lab/runner"
	"code-lab/runtime"
	"code-lab/runtime/workers"
	"code-lab/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	// A local .env is optional; the environment always wins.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := internal.Validate(config); err != nil {
		return exitConfig, fmt.Errorf("config validation: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Core wiring: rooms, sessions, broadcast, execution
	registry := runtime.NewRegistry()
	gateway := runtime.NewGateway(logger, registry, config.SinkTimeout)
	rooms := runtime.NewRoomRegistry(logger)

	tracker := make(chan domain.Process, config.TrackerBufferSize)
	watchdog := workers.NewProcessWatchdog(logger, tracker, config.MetricInterval)
	monitor := observability.NewMonitor(watchdog, rooms)

	codeRunner := runner.New(logger, config.ExecWorkDir, tracker)
	execService, err := services.NewExecService(logger, rooms, codeRunner, gateway, monitor, config.RecentResultCacheSize)
	if err != nil {
		return exitRuntime, fmt.Errorf("exec service: %w", err)
	}
	workspaceService := services.NewWorkspaceService(logger, rooms, registry, gateway, execService)

	// 4. Supervision: the watchdog restarts on panic, stops with ctx.
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(watchdog)
	go sup.Run(ctx)
	defer sup.Stop()

	// 5. HTTP + websocket surface
	mux := http.NewServeMux()
	httpapi.NewServer(logger, rooms, execService, monitor).Register(mux)
	mux.HandleFunc("/ws", ws.NewHandler(logger, workspaceService, config.SessionBufferSize).HandleWS)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", address)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return exitRuntime, fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received, draining connections...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return exitRuntime, fmt.Errorf("shutdown: %w", err)
		}
	}
	return exitOK, nil
}
