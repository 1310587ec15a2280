package avisos

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/avisos-api/internal/database"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  migrateExec,
}

func migrateExec(cmd *cobra.Command, _ []string) error {
	cfg, log, loggerService, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	db, err := database.New(cfg, log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to open database")
		return err
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context()); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}

	log.Info().Str("driver", db.Driver).Msg("migrations applied")
	return nil
}
