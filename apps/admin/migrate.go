package main

import (
	"context"

	"github.com/pressly/goose/v3"

	"github.com/crackinspine82/RattoMatt-sub001/storage/database"
)

var gooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if err := cli.setUpDB(ctx); err != nil {
		return err
	}
	if err := database.PrepareGoose(cli.db.DriverName()); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(ctx, args[0], cli.db.DB, database.MigrationsDir, arguments...)
}

func (cli *commandLine) createDB(ctx context.Context) error {
	return database.CreateIfNotExist(ctx, cli.conf)
}
