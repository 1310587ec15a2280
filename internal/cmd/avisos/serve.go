package avisos

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/avisos-api/internal/config"
	"github.com/deppfellow/avisos-api/internal/handler"
	"github.com/deppfellow/avisos-api/internal/logger"
	"github.com/deppfellow/avisos-api/internal/repository"
	"github.com/deppfellow/avisos-api/internal/router"
	"github.com/deppfellow/avisos-api/internal/server"
	"github.com/deppfellow/avisos-api/internal/service"
)

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 30 * time.Second

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Apply pending migrations, then run the HTTP API.",
	RunE:  serveExec,
}

// newApp opens the store, brings its schema up to date and wires
// repositories, services, handlers and the router. On error everything it
// opened is released, including the logger service handed over by the
// caller.
func newApp(ctx context.Context, cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) (*server.Server, *echo.Echo, error) {
	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	// Migrations run in every environment: they are versioned on postgres
	// and idempotent on sqlite, and an in-memory sqlite store only exists
	// inside this process.
	if err := srv.DB.Migrate(ctx); err != nil {
		_ = srv.Shutdown(context.Background())
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewService(srv, repos)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return nil, nil, fmt.Errorf("could not create services: %w", err)
	}

	e := router.NewRouter(srv, handler.NewHandlers(srv, services))
	srv.SetupHTTPServer(e)

	return srv, e, nil
}

func serveExec(cmd *cobra.Command, _ []string) error {
	cfg, log, loggerService, err := bootstrap()
	if err != nil {
		return err
	}

	srv, _, err := newApp(cmd.Context(), cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
