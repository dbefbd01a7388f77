package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thereayou/roomly/internal/config"
	"github.com/thereayou/roomly/internal/database"
	"github.com/thereayou/roomly/internal/handlers"
	"github.com/thereayou/roomly/internal/roomcode"
	"github.com/thereayou/roomly/internal/services"
	ws "github.com/thereayou/roomly/internal/websocket"
	"github.com/thereayou/roomly/pkg/auth"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Info().Msg(".env not found, using environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redis url")
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	hub := ws.NewHub(log.Logger)
	go hub.Run()
	defer hub.Stop()

	codes := roomcode.New()
	roomSvc := services.NewRoomService(db, db, db, codes, hub, log.Logger)
	chatSvc := services.NewChatService(db, db, db, db, log.Logger)
	presence := services.NewPresenceBroadcaster(db, db, hub, log.Logger)
	hub.SetPresence(presence)

	msgHandler := handlers.NewMessageHandler(chatSvc, hub, log.Logger)

	deps := routerDeps{
		auth:   handlers.NewAuthHandler(db, jwtMgr, rdb),
		users:  handlers.NewUserHandler(db),
		rooms:  handlers.NewRoomHandler(roomSvc),
		chat:   handlers.NewChatHandler(chatSvc),
		wsConn: handlers.NewWebSocketHandler(hub, msgHandler),
		jwt:    jwtMgr,
		redis:  rdb,
	}

	gin.SetMode(cfg.Mode)
	router := gin.Default()
	registerRoutes(router, deps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
