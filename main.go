package main

import (
	"context"
	"flag"
	"log"

	"github.com/fluffyriot/ttsync/internal/api/handlers"
	"github.com/fluffyriot/ttsync/internal/cli"
	"github.com/fluffyriot/ttsync/internal/config"
	"github.com/fluffyriot/ttsync/internal/fetcher"
	"github.com/fluffyriot/ttsync/internal/imagecache"
	"github.com/fluffyriot/ttsync/internal/middleware"
	"github.com/fluffyriot/ttsync/internal/worker"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	jobName := flag.String("job", "", "run a one-shot job instead of the server")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln(err)
	}

	dbQueries, dbConn, err := config.LoadDatabase()
	if err != nil {
		log.Fatalln(err)
	}

	store, err := imagecache.NewDiskStore(cfg.AvatarDir, cfg.AvatarPublicPrefix)
	if err != nil {
		log.Fatalln(err)
	}
	images := imagecache.New(store, cfg.APITimeout)

	apiClient := fetcher.NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.APITimeout)
	w := worker.NewWorker(dbQueries, apiClient, images, cfg)

	if *jobName != "" {
		if err := cli.RunJob(context.Background(), *jobName, w, images); err != nil {
			log.Fatalln(err)
		}
		return
	}

	h := handlers.NewHandler(dbQueries, dbConn, apiClient, images, cfg, w)

	r := gin.Default()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.Static(cfg.AvatarPublicPrefix, cfg.AvatarDir)
	r.Static("/static", "./static")

	r.GET("/healthz", h.HealthCheckHandler)
	r.POST("/sync", h.SyncProfileHandler)
	r.GET("/sync", h.SyncProfileHandler)
	r.GET("/image-proxy", h.ImageProxyHandler)

	api := r.Group("/api")
	{
		api.GET("/profiles", h.ListProfilesHandler)
		api.GET("/profiles/:username", h.GetProfileHandler)
		api.GET("/profiles/:username/posts", h.GetProfilePostsHandler)
		api.GET("/export/profiles", h.ExportProfilesHandler)
		api.GET("/export/profiles/:username/posts", h.ExportProfilePostsHandler)
	}

	w.Start(cfg.SyncInterval)

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalln(err)
	}
}
