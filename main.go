package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"betroom/bot/common"
	"betroom/cmd"
	"betroom/config"
	"betroom/database"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
)

type CLI struct {
	Serve     ServeCmd     `cmd:"" default:"1" help:"Run the HTTP API and, when configured, the Discord bot"`
	Migrate   MigrateCmd   `cmd:"" help:"Manage database migrations"`
	CloseRoom CloseRoomCmd `cmd:"" name:"close-room" help:"Draw the outcome of a room and pay out its winners"`
}

type ServeCmd struct{}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config) error {
	return cmd.Run(ctx, cfg)
}

type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Apply all pending migrations"`
	Down   MigrateDownCmd   `cmd:"" help:"Roll back migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show the current migration version"`
}

type MigrateUpCmd struct{}

func (c *MigrateUpCmd) Run(cfg *config.Config) error {
	return database.MigrateUp(cfg.GetDatabaseURL())
}

type MigrateDownCmd struct {
	Steps int `arg:"" optional:"" default:"1" help:"Number of migrations to roll back"`
}

func (c *MigrateDownCmd) Run(cfg *config.Config) error {
	return database.MigrateDown(cfg.GetDatabaseURL(), c.Steps)
}

type MigrateStatusCmd struct{}

func (c *MigrateStatusCmd) Run(cfg *config.Config) error {
	version, dirty, err := database.MigrateStatus(cfg.GetDatabaseURL())
	if err != nil {
		return err
	}
	fmt.Printf("version: %d dirty: %t\n", version, dirty)
	return nil
}

type CloseRoomCmd struct {
	Code string `arg:"" help:"Six character room code"`
}

func (c *CloseRoomCmd) Run(ctx context.Context, cfg *config.Config) error {
	result, err := cmd.CloseRoom(ctx, cfg, c.Code)
	if err != nil {
		return err
	}
	fmt.Printf("room %s landed on %s (%d)\n", result.Room.Code, result.WinningOption.Label, result.DrawValue)
	fmt.Printf("pool %s, paid %d winners, house retained %s\n",
		common.FormatMoney(result.TotalPool), len(result.Winners()), common.FormatMoney(result.HouseRetained))
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("betroom"),
		kong.Description("Betting rooms with pooled, proportional payouts"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Configuration error")
	}
	cmd.ConfigureLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(cfg)
	if err := kctx.Run(); err != nil {
		log.WithError(err).Error("Command failed")
		cancel()
		os.Exit(1)
	}
}
