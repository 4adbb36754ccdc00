package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/logger"
	"roombooking/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logger.New(cfg.Log, cfg.IsProdLike())
	log.WithFields(logrus.Fields{"app": cfg.App.Name, "env": cfg.App.Env}).Info("starting")

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if err := database.ConfigurePool(db, cfg.Database); err != nil {
		log.WithError(err).Fatal("failed to configure connection pool")
	}

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.WithError(err).Fatal("auto migrate failed")
		}
	}
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, log); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	app, err := server.New(cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	app.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("stopped")
}
