package server

import (
	"time"

	"github.com/spf13/viper"

	"github.com/krendi/telecards/internal/matchmaking"
	"github.com/krendi/telecards/pkg/logging"
)

type Config struct {
	Port      string
	JwtSecret string
	AwsRegion string
	LocalMode bool

	PlayersTableName string

	TurnDuration  time.Duration
	CancelTimeout time.Duration
	BotDelayMin   time.Duration
	BotDelayMax   time.Duration

	Matchmaking matchmaking.Config
}

// NewConfig loads configuration from ./configs/server/config.yaml when
// present, with environment variables taking precedence over file values
// and built-in defaults.
func NewConfig() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs/server")
	viper.AddConfigPath(".")

	viper.SetDefault("Server.Port", "8080")
	viper.SetDefault("Server.TurnDuration", "45s")
	viper.SetDefault("Server.CancelTimeout", "30s")
	viper.SetDefault("Server.BotDelayMin", "1s")
	viper.SetDefault("Server.BotDelayMax", "2500ms")
	viper.SetDefault("Server.LocalMode", false)
	viper.SetDefault("Matchmaking.BaseGap", 100)
	viper.SetDefault("Matchmaking.MaxGap", 500)
	viper.SetDefault("Matchmaking.WidenEvery", "5s")
	viper.SetDefault("Matchmaking.Interval", "3s")
	viper.SetDefault("Storage.PlayersTableName", "Players")

	if err := viper.ReadInConfig(); err != nil {
		logging.Warn("no config file found, using defaults and environment")
	}
	viper.AutomaticEnv()

	return Config{
		Port:             viper.GetString("Server.Port"),
		JwtSecret:        viper.GetString("JWT_SECRET"),
		AwsRegion:        viper.GetString("AWS_REGION"),
		LocalMode:        viper.GetBool("Server.LocalMode"),
		PlayersTableName: viper.GetString("Storage.PlayersTableName"),
		TurnDuration:     viper.GetDuration("Server.TurnDuration"),
		CancelTimeout:    viper.GetDuration("Server.CancelTimeout"),
		BotDelayMin:      viper.GetDuration("Server.BotDelayMin"),
		BotDelayMax:      viper.GetDuration("Server.BotDelayMax"),
		Matchmaking: matchmaking.Config{
			BaseGap:    viper.GetInt("Matchmaking.BaseGap"),
			MaxGap:     viper.GetInt("Matchmaking.MaxGap"),
			WidenEvery: viper.GetDuration("Matchmaking.WidenEvery"),
			Interval:   viper.GetDuration("Matchmaking.Interval"),
		},
	}
}
