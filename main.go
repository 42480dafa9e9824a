package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/models"
	"github.com/cppla/aiblog/routes"
	"github.com/cppla/aiblog/storage"
	"github.com/cppla/aiblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		utils.Sugar.Fatalf("database init failed: %v", err)
	}
	defer config.CloseDatabase(db)

	tokens, err := utils.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		utils.Sugar.Fatalf("token manager init failed: %v", err)
	}

	images, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("image store init failed: %v", err)
	}

	rc := utils.NewRedis(cfg)
	if rc != nil {
		defer rc.Close()
	}

	r := routes.SetupRouter(routes.Deps{
		Config: cfg,
		DB:     db,
		Redis:  rc,
		Tokens: tokens,
		Images: images,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(ctx, ":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
