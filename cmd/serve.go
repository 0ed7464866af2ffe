package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/shipgate/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status API server with auto-refresh",
	Long: `Start the background refresh loop and serve the read-only status API.

By default it listens on port 8080. Use --port to change it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun()
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func serveRun() error {
	e, err := getEngine()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stop := e.StartAutoRefresh(ctx, refreshInterval())
	defer stop()

	addr := fmt.Sprintf(":%d", viper.GetInt("port"))
	srv := &http.Server{Addr: addr, Handler: api.NewServer(e).Router()}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	slog.Info("serving status API", "addr", addr, "projects", len(e.Projects()), "interval", refreshInterval())
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
