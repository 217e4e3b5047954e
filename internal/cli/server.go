package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"addition-drill/internal/config"
	"addition-drill/internal/generator"
	transport "addition-drill/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the drill server (WebSocket + history endpoints)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, cmd.Flags().Changed("port"))
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string, portExplicit bool) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	finalPort := cfg.Server.Port
	if portExplicit || finalPort == "" {
		finalPort = portFlag
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	wsHandler := transport.NewWSHandler(generator.New(), history, cfg.Drill.SessionConfig, controllerOptions(cfg)...)
	mux := http.NewServeMux()
	transport.Routes(mux, wsHandler, transport.NewHistoryHandler(history))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting drill server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
