package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aigc.wiki/configs"
	"aigc.wiki/configs/configsdatabase"
	"aigc.wiki/configs/configslog"
	"aigc.wiki/database"
	"aigc.wiki/pkg/token"
	"aigc.wiki/routes"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "aigc-wiki",
		Usage: "AI image card gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "Optional dotenv file"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		configslog.Log.Error("Exited with error", zap.Error(err))
		configslog.SyncLogger()
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, err := configs.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	if err := configslog.InitLogger(cfg.LogLevel, cfg.IsProduction()); err != nil {
		return err
	}
	defer configslog.SyncLogger()

	if cfg.UsingFallbackKey {
		configslog.Log.Error("JWT_SECRET is not set, signing sessions with the development fallback secret. Anyone can forge admin tokens; never run like this in production.")
	}

	configsdatabase.InitDB(cfg)
	defer configsdatabase.CloseDB()
	db := configsdatabase.GetDB()

	if err := database.Initialize(db, database.Options{
		Migrate:       cfg.Database.AutoMigrate,
		Seed:          true,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return err
	}

	server := routes.New(routes.Deps{
		Config:    cfg,
		DB:        db,
		Tokens:    token.New(cfg.Secret),
		AccessLog: true,
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		configslog.SLog.Infof("Listening on %s (%s)", cfg.Addr(), cfg.Env)
		errCh <- server.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	configslog.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
