package main

import (
	"os"

	"libres/config"
	"libres/helper"
	"libres/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration action is required: up, down, drop or step-up")
	}

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	action := helper.Action(os.Args[1])

	if !action.Valid() {
		log.Fatal().Str("action", os.Args[1]).Msg("Invalid action. Use 'up', 'down', 'drop' or 'step-up'")
	}

	if err := helper.Runner(cfg, action); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
