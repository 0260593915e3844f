// entry point to app :)
package main

import (
	"github.com/ds124wfegd/college-events/config"
	"github.com/ds124wfegd/college-events/internal/appServer"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	// .env is optional, real environment wins
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment")
	}

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	appServer.NewServer(cfg)
}
