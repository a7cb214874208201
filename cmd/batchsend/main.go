package main

import (
	"log"

	"github.com/joho/godotenv"

	"relaybot/bots/batchsend"
	"relaybot/core/bootstrap"
	"relaybot/core/cmd"
	coreconfig "relaybot/core/config"
)

type appConfig struct {
	*coreconfig.Config
}

func (c appConfig) CoreConfig() *coreconfig.Config { return c.Config }

func main() {
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "configs/batchsend.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return appConfig{cfg}, nil
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := carrier.CoreConfig()
			res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return batchsend.New(cfg, res.Store), nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
