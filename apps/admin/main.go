package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/crackinspine82/RattoMatt-sub001/core"
	logsvc "github.com/crackinspine82/RattoMatt-sub001/services/logger"
	filestore "github.com/crackinspine82/RattoMatt-sub001/storage/files"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// start CLI; the DB is only opened by commands needing it
	cli := &commandLine{
		conf:       conf,
		logger:     logger,
		out:        os.Stdout,
		validate:   validate,
		translator: translator,
		artifacts:  filestore.NewArtifactStore(),
	}
	err := cli.run(os.Args)
	cli.close()
	if err != nil && err != errHelp {
		logger.Error("error: "+err.Error(), err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
