package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/crackinspine82/RattoMatt-sub001/core"
	"github.com/crackinspine82/RattoMatt-sub001/core/content"
	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
	"github.com/crackinspine82/RattoMatt-sub001/storage/database"
	sqlxrepos "github.com/crackinspine82/RattoMatt-sub001/storage/database/sqlx"
)

var (
	openDBFunc = database.Open // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator

	db           *sqlx.DB
	syllabusRepo syllabus.Repository
	artifacts    content.Store
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  assign [-shape auto|items|sections] [-strict] CHAPTER_ID FILE - assign syllabus nodes to the entries of a content file")
	_, _ = fmt.Fprintln(cli.out, "  tree [-check] CHAPTER_ID - print the ordered syllabus of a chapter")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	_, _ = fmt.Fprintln(cli.out, "  createdb - create the database and its user if missing")
}

func (cli *commandLine) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(cli.out, "Usage: %s\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return core.NewPreconditionError(err)
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "assign":
		assignCmd := cli.newFlagSet("assign", "assign [-shape auto|items|sections] [-strict] CHAPTER_ID FILE")
		shape := assignCmd.String("shape", string(content.ShapeAuto), "The artifact shape; auto detects it from the top-level list.")
		strict := assignCmd.Bool("strict", cli.conf.Content.StrictSections, "Fail when a section list does not match the node count.")
		if err := cli.parse(assignCmd, args[2:]); err != nil {
			return err
		}
		in := assignInput{
			ChapterID: core.CleanString(assignCmd.Arg(0)),
			Path:      core.CleanString(assignCmd.Arg(1)),
			Shape:     core.CleanString(*shape, true /* lower */),
		}
		if err := core.ValidateInput(cli.validate, cli.translator, in); err != nil {
			assignCmd.Usage()
			return err
		}
		return cli.assign(ctx, in, *strict)

	case "tree":
		treeCmd := cli.newFlagSet("tree", "tree [-check] CHAPTER_ID")
		check := treeCmd.Bool("check", false, "Verify the order against the database's recursive tree query.")
		if err := cli.parse(treeCmd, args[2:]); err != nil {
			return err
		}
		in := treeInput{ChapterID: core.CleanString(treeCmd.Arg(0))}
		if err := core.ValidateInput(cli.validate, cli.translator, in); err != nil {
			treeCmd.Usage()
			return err
		}
		return cli.tree(ctx, in, *check)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "createdb":
		return cli.createDB(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

// setUpDB opens and pings the database unless a handle was provided.
func (cli *commandLine) setUpDB(ctx context.Context) error {
	if cli.db == nil {
		db, err := openDBFunc(cli.conf)
		if err != nil {
			return err
		}
		if err = database.Ping(ctx, db, 3); err != nil {
			_ = db.Close()
			return err
		}
		cli.db = db
	}
	if cli.syllabusRepo == nil {
		cli.syllabusRepo = sqlxrepos.NewSyllabusRepository(cli.db)
	}
	return nil
}

func (cli *commandLine) close() {
	if cli.db == nil {
		return
	}
	if err := cli.db.Close(); err != nil {
		cli.logger.Error("closing database", err)
	}
	cli.db = nil
}
