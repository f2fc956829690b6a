package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nitanmarcel/callaudiod/internal/control"
	"github.com/nitanmarcel/callaudiod/internal/logging"
	"github.com/nitanmarcel/callaudiod/internal/pulse"
	"github.com/nitanmarcel/callaudiod/internal/pulse/backend"
)

const controlListenAddr = ":7681"

func main() {
	logger := logging.Component("main")
	cfg := pulse.DefaultConfig()

	srv := backend.New(cfg.ApplicationName)
	session := pulse.NewSession(srv, cfg)
	session.Start()

	controlServer := control.NewServer(session.Facade(), controlListenAddr)
	go func() {
		if err := controlServer.Start(); err != nil {
			logger.Error().Err(err).Msg("control surface stopped unexpectedly")
		}
	}()

	logger.Info().Str("addr", controlListenAddr).Msg("callaudiod started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("callaudiod shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := controlServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("control surface did not shut down cleanly")
	}
	session.Close()
}
