package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/rainier/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the contract upload web server",
	Long: `Serve starts the web UI and JSON API:
- GET  /                  upload form
- POST /analyze           review an uploaded PDF and render the report
- POST /api/v1/analyze    same, as JSON
- GET  /api/v1/categories phrase table in use
- GET  /api/v1/questions  questions asked of each contract
- GET  /healthz, /readyz, /metrics

Example:
  rainier serve
  rainier serve --addr :8080
  RAINIER_LLM_PROVIDER=openai OPENAI_API_KEY=sk-... rainier serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	addAnalysisFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession(applyAnalysisFlags)
	if err != nil {
		return err
	}
	defer s.close()

	srv, err := server.New(s.cfg, s.pipeline, s.metrics, s.logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	s.logger.Info("phrase table loaded", zap.Int("categories", len(s.pipeline.Categories())))
	if s.pipeline.Answerer().IsEnabled() {
		s.logger.Info("question answering enabled",
			zap.String("provider", s.pipeline.Answerer().ProviderName()),
			zap.String("model", s.pipeline.Answerer().Model()))
	} else {
		s.logger.Info("question answering disabled")
	}

	// Graceful shutdown
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("server exited")
	return nil
}
