package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/mockapi"
)

var (
	mockAddr string
	mockData string
)

var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Serve the REST problem backend used in development",
	Long: `Serves /problems and /users the way the development JSON backend does.
With --data the records are read from a db.json file and PATCHed problems
are written back to it; otherwise the embedded reference data is served.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Default().WithPrefix("mock-backend")

		var (
			srv *mockapi.Server
			err error
		)
		if mockData != "" {
			srv, err = mockapi.Load(mockData)
		} else {
			srv, err = mockapi.NewFromSeed(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1)))
		}
		if err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr:              mockAddr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening on %s", mockAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	mockBackendCmd.Flags().StringVar(&mockAddr, "addr", ":3001", "listen address")
	mockBackendCmd.Flags().StringVar(&mockData, "data", os.Getenv("MOCK_BACKEND_DATA"), "db.json file to serve and persist")
	rootCmd.AddCommand(mockBackendCmd)
}
