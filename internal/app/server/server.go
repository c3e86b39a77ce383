package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/krendi/telecards/internal/challenge"
	"github.com/krendi/telecards/internal/game"
	"github.com/krendi/telecards/internal/matchmaking"
	"github.com/krendi/telecards/internal/storage"
	"github.com/krendi/telecards/pkg/logging"
)

// Server wires the match engine, the matchmaking queue, the challenge
// broker and the player store behind three websocket endpoints.
type Server struct {
	cfg      Config
	engine   *game.Engine
	store    storage.PlayerStore
	queue    *matchmaking.Queue
	broker   *challenge.Broker
	sessions sync.Map
	upgrader websocket.Upgrader

	httpServer *http.Server
}

func NewServer(cfg Config) *Server {
	logging.Init(cfg.LocalMode)
	s := &Server{
		cfg:    cfg,
		engine: game.NewEngine(game.DefaultCatalog()),
		broker: challenge.NewBroker(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.store = newPlayerStore(cfg)
	s.queue = matchmaking.NewQueue(cfg.Matchmaking, s.onPair)
	return s
}

// newPlayerStore picks the persistence backend: in-memory for local
// mode, DynamoDB otherwise.
func newPlayerStore(cfg Config) storage.PlayerStore {
	if cfg.LocalMode {
		logging.Info("using in-memory player store")
		return storage.NewMemoryStore()
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AwsRegion),
	)
	if err != nil {
		logging.Fatal("failed to load aws config", zap.Error(err))
	}
	return storage.NewClient(dynamodb.NewFromConfig(awsCfg), storage.Config{
		PlayersTableName: aws.String(cfg.PlayersTableName),
	})
}

// Run starts the pairing loop and serves the websocket endpoints until
// the listener fails.
func (s *Server) Run() error {
	s.queue.Start()
	defer s.queue.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/matchmaking", s.handleMatchmakingWS)
	mux.HandleFunc("/ws/challenge", s.handleChallengeWS)
	mux.HandleFunc("/ws/match/{matchId}", s.handleMatchWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: mux,
	}
	logging.Info("server listening", zap.String("port", s.cfg.Port))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.queue.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
