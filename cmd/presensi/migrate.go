package main

import (
	"log/slog"

	"github.com/immxrtalbeast/presensi/internal/database"
	"github.com/immxrtalbeast/presensi/lib/logger/sl"
	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := cfg.Database
			dbCfg.AutoMigrate = false

			db, err := database.Open(dbCfg, log)
			if err != nil {
				log.Error("failed to connect database", sl.Err(err))
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db, log); err != nil {
				log.Error("migration failed", sl.Err(err))
				return err
			}

			log.Info("migration finished", slog.String("driver", dbCfg.Driver))
			return nil
		},
	}
}
