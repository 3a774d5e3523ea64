package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strandchat/strand/migration"
)

// migrateCommand マイグレーション実行コマンド
func migrateCommand() *cobra.Command {
	var dropDB bool

	cmd := cobra.Command{
		Use:   "migrate",
		Short: "Execute database schema migration only",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()
			defer logger.Sync()

			engine, err := c.getDatabase(logger)
			if err != nil {
				return err
			}
			db, err := engine.DB()
			if err != nil {
				return err
			}
			defer db.Close()

			if dropDB {
				if err := migration.DropAll(engine); err != nil {
					return err
				}
				logger.Info("all tables were dropped")
			}

			init, err := migration.Migrate(engine)
			if err != nil {
				return err
			}
			if init {
				logger.Info("database schema was initialized")
			}
			logger.Info("migration completed", zap.Bool("init", init))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&dropDB, "reset", false, "whether to truncate database (drop all tables)")

	return &cmd
}
