package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/chronica-rpg/chronica/internal/config"
	"github.com/chronica-rpg/chronica/internal/dice"
	actorrepo "github.com/chronica-rpg/chronica/internal/repositories/actors"
	encounterrepo "github.com/chronica-rpg/chronica/internal/repositories/encounters"
	"github.com/chronica-rpg/chronica/internal/relay"
	actionsvc "github.com/chronica-rpg/chronica/internal/services/action"
	actorsvc "github.com/chronica-rpg/chronica/internal/services/actor"
	encountersvc "github.com/chronica-rpg/chronica/internal/services/encounter"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rulesData, err := config.LoadRulesData(cfg.Rules.DataPath)
	if err != nil {
		log.Fatalf("Failed to load rules data: %v", err)
	}
	if cfg.Rules.DataPath != "" {
		log.Printf("Loaded rules data from %s", cfg.Rules.DataPath)
	}

	// Repositories: Redis when reachable, in-memory otherwise
	var (
		actorRepository     actorrepo.Repository
		encounterRepository encounterrepo.Repository
		redisClient         *redis.Client
	)

	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		cancel()
		log.Printf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, pingErr)
		log.Println("Falling back to in-memory repositories")
		_ = redisClient.Close()
		redisClient = nil
		actorRepository = actorrepo.NewInMemoryRepository()
		encounterRepository = encounterrepo.NewInMemoryRepository()
	} else {
		cancel()
		log.Printf("Connected to Redis at %s", cfg.Redis.Addr)
		actorRepository = actorrepo.NewRedisRepository(&actorrepo.RedisRepoConfig{Client: redisClient})
		encounterRepository = encounterrepo.NewRedisRepository(&encounterrepo.RedisRepoConfig{Client: redisClient})
	}

	roller := dice.NewRandomRoller()

	actorService := actorsvc.NewService(&actorsvc.ServiceConfig{
		Repository: actorRepository,
		Roller:     roller,
		RulesData:  rulesData,
	})

	encounterService := encountersvc.NewService(&encountersvc.ServiceConfig{
		Repository:   encounterRepository,
		ActorService: actorService,
		Roller:       roller,
	})

	// the server is the authority host: actions write shared state directly
	actionService := actionsvc.NewService(&actionsvc.ServiceConfig{
		ActorService:        actorService,
		EncounterRepository: encounterRepository,
		Roller:              roller,
	})

	dispatcher := relay.NewDispatcher(&relay.DispatcherConfig{
		ActorService:     actorService,
		EncounterService: encounterService,
		ActionService:    actionService,
		Roller:           roller,
	})

	hub := relay.NewHub(&relay.HubConfig{
		Dispatcher: dispatcher,
		GMToken:    cfg.Server.GMToken,
	})

	router := mux.NewRouter()
	hub.Routes(router)

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("Relay listening on %s", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}
}
