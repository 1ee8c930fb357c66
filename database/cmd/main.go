package main

import (
	"os"

	"aigc.wiki/configs"
	"aigc.wiki/configs/configsdatabase"
	"aigc.wiki/configs/configslog"
	"aigc.wiki/database"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "aigc-db",
		Usage: "Run database migrations and seeders",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Run migrations"},
			&cli.BoolFlag{Name: "seed", Usage: "Create the initial admin if none exists"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "Optional dotenv file"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := configs.Load(c.String("env-file"))
			if err != nil {
				return err
			}
			if err := configslog.InitLogger(cfg.LogLevel, cfg.IsProduction()); err != nil {
				return err
			}
			defer configslog.SyncLogger()

			configsdatabase.InitDB(cfg)
			defer configsdatabase.CloseDB()

			return database.Initialize(configsdatabase.GetDB(), database.Options{
				Migrate:       c.Bool("migrate"),
				Seed:          c.Bool("seed"),
				AdminUsername: cfg.AdminUsername,
				AdminPassword: cfg.AdminPassword,
			})
		},
	}

	if err := app.Run(os.Args); err != nil {
		configslog.Log.Error("Database initialization failed", zap.Error(err))
		os.Exit(1)
	}
}
