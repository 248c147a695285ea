// Package system holds process level helpers: the per-run temp directory and signal handling.
package system

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

type ShutdownHandler func()

// RegisterGracefulShutdownHandler runs handler once on SIGINT or SIGTERM and exits with code 130.
// The returned function unregisters the handler.
func RegisterGracefulShutdownHandler(handler ShutdownHandler) (stop func()) {
	sigChannel := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChannel:
			log.Info().Str("signal", sig.String()).Msg("Received interrupt signal, cleaning up")
			handler()
			os.Exit(130)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChannel)
		close(done)
	}
}
