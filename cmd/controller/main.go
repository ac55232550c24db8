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

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/WaveStream/internal/config"
	"github.com/RenatoCabral2022/WaveStream/internal/control"
	"github.com/RenatoCabral2022/WaveStream/internal/health"
	"github.com/RenatoCabral2022/WaveStream/internal/logging"
	"github.com/RenatoCabral2022/WaveStream/internal/protocol"
	"github.com/RenatoCabral2022/WaveStream/internal/script"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, "controller")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n[CONTROLLER] PID: %d\n", os.Getpid())
	logger.Info("waiting for generator", zap.String("fifo", cfg.FIFOPath))

	sender, err := protocol.Dial(ctx, cfg.FIFOPath, cfg.DialPoll)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Fatal("failed to open command FIFO", zap.Error(err))
	}
	defer sender.Close()

	if cfg.HealthAddr != "" {
		probeCtx, cancel := context.WithTimeout(ctx, time.Second)
		status, err := health.Check(probeCtx, cfg.HealthAddr)
		cancel()
		if err != nil {
			logger.Warn("generator health unknown", zap.Error(err))
		} else {
			logger.Info("generator health", zap.Stringer("status", status))
		}
	}

	if cfg.ControllerScript != "" {
		logger.Info("running script", zap.String("path", cfg.ControllerScript))
		if err := script.RunFile(ctx, sender, cfg.ControllerScript); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("script failed", zap.Error(err))
		}
		return
	}

	var apiSrv *http.Server
	if cfg.ControllerHTTPAddr != "" {
		apiSrv = &http.Server{
			Addr:         cfg.ControllerHTTPAddr,
			Handler:      control.NewAPI(sender, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 20 * time.Second,
		}
		go func() {
			logger.Info("command API listening", zap.String("addr", cfg.ControllerHTTPAddr))
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("command API failed", zap.Error(err))
			}
		}()
	}

	repl := control.NewREPL(sender, os.Stdin, logger)
	if err := repl.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("controller stopped", zap.Error(err))
	}

	if apiSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		apiSrv.Shutdown(shutdownCtx)
	}
}
