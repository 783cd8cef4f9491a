package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/ericogr/titan-arena/internal/api"
	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/ericogr/titan-arena/internal/lobby"
	"github.com/ericogr/titan-arena/internal/logging"
	"github.com/ericogr/titan-arena/internal/progression"
	"github.com/ericogr/titan-arena/internal/realtime"
	"github.com/ericogr/titan-arena/internal/service"
	"github.com/ericogr/titan-arena/internal/titans"

	"github.com/gin-gonic/gin"
)

func main() {
	// Path may be provided via TITAN_CONFIG; a missing file means defaults.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}
	cfg := loadConfigOrExit(configPath)
	logging.Init(cfg.LogLevel)
	defer logging.Sync()

	if os.Getenv(constants.EnvSessionSecret) == "" {
		logging.Info("SESSION_SECRET not set; sessions will not survive a restart", nil)
	}

	repo := createRepositoryOrExit(databasePath(cfg))
	seed := time.Now().UnixNano()
	roster := titans.NewRoster(repo, cfg, rand.New(rand.NewSource(seed)))
	recorder := progression.NewRecorder(repo, rand.New(rand.NewSource(seed+1)))
	manager := service.NewManager(service.Options{
		ActionTimeout: cfg.ActionTimeout,
		Recorder:      recorder,
	})
	hub := realtime.NewHub(realtime.Config{
		Games:      manager,
		Roster:     roster,
		Users:      repo,
		Lobby:      lobby.New(),
		SessionTTL: cfg.SessionTTL,
	})
	startTimeoutScanner(manager, hub, cfg.ScanInterval)

	handler := api.NewGameHandler(repo, manager, roster, hub)
	authHandler := api.NewAuthHandler(repo, roster)

	router := gin.Default()
	router.GET(constants.RouteHealth, api.Health)
	router.GET(constants.RouteWebSocket, api.WebSocket(hub))

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteAbilities, handler.ListAbilities)
		apiRoutes.GET(constants.RouteLeaderboard, handler.ListLeaderboard)
		apiRoutes.GET(constants.RouteVersion, api.Version)
		apiRoutes.POST(constants.RouteAuthLogin, authHandler.Login)
		apiRoutes.POST(constants.RouteAuthLogout, authHandler.Logout)
		apiRoutes.POST(constants.RouteAuthGoogle, authHandler.GoogleOAuthCallback)

		// Authenticated endpoints
		protected := apiRoutes.Group("")
		protected.Use(api.AuthRequired())
		protected.GET(constants.RouteTitans, handler.ListTitans)
		protected.GET(constants.RoutePlayerStats, handler.PlayerStats)
		protected.GET(constants.RouteCurrentGame, handler.CurrentGame)
		protected.GET(constants.RouteGameByID, handler.GetGame)
		protected.POST(constants.RouteGameAction, handler.SubmitAction)
		protected.POST(constants.RouteGameLeave, handler.LeaveGame)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
