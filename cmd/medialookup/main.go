package main

import (
	"log"

	"github.com/joho/godotenv"

	"relaybot/bots/medialookup"
	"relaybot/core/cmd"
	coreconfig "relaybot/core/config"
	"relaybot/core/logger"
)

type appConfig struct {
	*coreconfig.Config
}

func (c appConfig) CoreConfig() *coreconfig.Config { return c.Config }

func main() {
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "configs/medialookup.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return appConfig{cfg}, nil
		},
		// The lookup bot has no persistence; only the logger is set up.
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := carrier.CoreConfig()
			if err := logger.InitLogger(cfg); err != nil {
				return nil, err
			}
			return medialookup.New(cfg), nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
