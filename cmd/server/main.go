package main

import (
	"os"

	_ "workspace/docs"
	"workspace/internal/config"
	"workspace/internal/server"

	"github.com/sirupsen/logrus"
)

// @title           Workspace API
// @version         1.0
// @description     API for collaborative kanban workspaces.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	log := setupLogger(cfg.Env)

	s, err := server.Init(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("server initialization failed")
	}

	s.Run()
}

func setupLogger(env string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch env {
	case "prod":
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
