// Package avisos holds the cobra commands of the avisos binary.
package avisos

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/avisos-api/internal/config"
	"github.com/deppfellow/avisos-api/internal/logger"
)

var configPath string

var RootCmd = &cobra.Command{
	Use:          "avisos",
	Short:        "Avisos notices API",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(MigrateCmd)
}

// bootstrap loads the config and builds the logger stack shared by every
// subcommand.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, &log, loggerService, nil
}
