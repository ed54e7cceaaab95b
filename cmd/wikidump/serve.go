package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dump API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if detach, _ := cmd.Flags().GetBool("detach"); detach {
			return startDetached()
		}

		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if host, _ := cmd.Flags().GetString("host"); host != "" {
			a.config.Server.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			a.config.Server.Port = port
		}

		return runServer(a)
	},
}

func init() {
	serveCmd.Flags().Bool("detach", false, "Run the server as a background process")
	serveCmd.Flags().String("host", "", "Listen host (overrides config)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")
}

func runServer(a *application) error {
	log := a.log
	log.Info("Starting wikidump server",
		zap.String("version", "1.0.0"),
		zap.String("host", a.config.Server.Host),
		zap.Int("port", a.config.Server.Port),
		zap.String("dir", a.config.Download.Dir),
		zap.Stringer("dump", a.config.Dump.Descriptor()))

	router := api.SetupRouter(a.svc, a.config, a.events, log)

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	}

	log.Info("Shutting down server...")

	// In-flight downloads are canceled with their request context
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// startDetached re-executes the binary without --detach as a background process
func startDetached() error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	var args []string
	for _, arg := range os.Args[1:] {
		if arg != "--detach" && arg != "--detach=true" {
			args = append(args, arg)
		}
	}

	cmd := exec.Command(execPath, args...)
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	fmt.Printf("Server started in background (PID: %d)\n", cmd.Process.Pid)
	return cmd.Process.Release()
}
