package handlers

import (
	"database/sql"

	"github.com/fluffyriot/ttsync/internal/config"
	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/fetcher"
	"github.com/fluffyriot/ttsync/internal/imagecache"
	"github.com/fluffyriot/ttsync/internal/worker"
)

type Handler struct {
	DB      *database.Queries
	DBConn  *sql.DB
	Fetcher *fetcher.Client
	Images  *imagecache.Cache
	Config  *config.AppConfig
	Worker  *worker.Worker
}

func NewHandler(db *database.Queries, dbConn *sql.DB, clientFetch *fetcher.Client, images *imagecache.Cache, cfg *config.AppConfig, w *worker.Worker) *Handler {
	return &Handler{
		DB:      db,
		DBConn:  dbConn,
		Fetcher: clientFetch,
		Images:  images,
		Config:  cfg,
		Worker:  w,
	}
}
