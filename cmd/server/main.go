package main

import (
	"go.uber.org/zap"

	"github.com/krendi/telecards/internal/app/server"
	"github.com/krendi/telecards/pkg/logging"
)

func main() {
	defer logging.Sync()
	logging.Fatal("Game server exited: ", zap.Error(
		server.NewServer(server.NewConfig()).Run(),
	))
}
