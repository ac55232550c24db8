package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/WaveStream/internal/config"
	"github.com/RenatoCabral2022/WaveStream/internal/health"
	"github.com/RenatoCabral2022/WaveStream/internal/logging"
	"github.com/RenatoCabral2022/WaveStream/internal/oscillator"
	"github.com/RenatoCabral2022/WaveStream/internal/producer"
	"github.com/RenatoCabral2022/WaveStream/internal/protocol"
	"github.com/RenatoCabral2022/WaveStream/internal/ringbuffer"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, "generator")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("generator starting",
		zap.Int("pid", os.Getpid()),
		zap.String("fifo", cfg.FIFOPath),
		zap.String("shm", ringbuffer.SegmentPath(cfg.ShmName)),
		zap.String("statusAddr", cfg.StatusAddr),
		zap.String("healthAddr", cfg.HealthAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := protocol.CreateFIFO(cfg.FIFOPath); err != nil {
		logger.Fatal("failed to create command FIFO", zap.Error(err))
	}
	commands, err := protocol.OpenReceiver(cfg.FIFOPath)
	if err != nil {
		logger.Fatal("failed to open command FIFO", zap.Error(err))
	}
	ring, err := ringbuffer.Create(cfg.ShmName)
	if err != nil {
		commands.Close()
		commands.Remove()
		logger.Fatal("failed to create ring segment", zap.Error(err))
	}

	gen := oscillator.NewDefaultSine()
	p := producer.New(cfg, logger, gen, ring, commands)

	var statusSrv *http.Server
	if cfg.StatusAddr != "" {
		statusSrv = &http.Server{
			Addr:         cfg.StatusAddr,
			Handler:      p.StatusHandler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 20 * time.Second,
		}
		go func() {
			logger.Info("status API listening", zap.String("addr", cfg.StatusAddr))
			if err := statusSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status API failed", zap.Error(err))
			}
		}()
	}

	var healthSrv *health.Server
	if cfg.HealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			logger.Error("health listener failed", zap.Error(err))
		} else {
			healthSrv = health.NewServer(logger)
			go func() {
				if err := healthSrv.Serve(lis); err != nil {
					logger.Error("health server failed", zap.Error(err))
				}
			}()
			healthSrv.SetServing(true)
		}
	}

	logger.Info("waiting for commands",
		zap.Float64("frequency", gen.Frequency()),
		zap.Float64("amplitude", gen.Amplitude()))

	p.Run(ctx)

	logger.Info("shutting down")
	if healthSrv != nil {
		healthSrv.SetServing(false)
		healthSrv.Stop()
	}
	if statusSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		statusSrv.Shutdown(shutdownCtx)
		cancel()
	}
	commands.Close()
	if err := commands.Remove(); err != nil {
		logger.Warn("failed to remove command FIFO", zap.Error(err))
	}
	total := ring.TotalProduced()
	if err := ring.Close(); err != nil {
		logger.Warn("failed to release ring segment", zap.Error(err))
	}
	logger.Info("generator stopped", zap.Uint64("samples", total))
}
