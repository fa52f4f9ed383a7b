package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/jonwoodard/timetrack4237/internal/config"
	"github.com/jonwoodard/timetrack4237/internal/exporter"
	"github.com/jonwoodard/timetrack4237/internal/server"
	"github.com/jonwoodard/timetrack4237/internal/store"
)

func main() {
	logoutOnly := flag.Bool("logout", false, "close all open sessions and exit")
	exportOnly := flag.Bool("export", false, "write the hours spreadsheet and exit")
	flag.Parse()

	cfg := config.Load()

	switch {
	case *logoutOnly:
		os.Exit(runLogout(cfg))
	case *exportOnly:
		os.Exit(runExport(cfg))
	default:
		if err := runServer(cfg); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}
}

// runLogout closes every open session. Meant for cron: it talks straight to
// the database so it works while the server is down, and its exit code tells
// cron whether every session was closed.
func runLogout(cfg config.App) int {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		if errors.Is(err, store.ErrMissingDatabase) {
			log.Printf("no database at %s, nothing to log out", cfg.DBPath)
			return 1
		}
		log.Printf("open database: %v", err)
		return 1
	}
	defer st.Close()

	count, total, err := st.LogoutAll(store.Now())
	if err != nil {
		log.Printf("logout failed: %v", err)
		return 1
	}
	log.Println(store.SweepMessage(count, total))
	if count != total {
		return 1
	}
	return 0
}

func runExport(cfg config.App) int {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Printf("open database: %v", err)
		return 1
	}
	defer st.Close()

	data, err := st.ExportSnapshot()
	if err != nil {
		log.Printf("export query failed: %v", err)
		return 1
	}
	if err := exporter.Write(cfg.ExportPath, data); err != nil {
		log.Printf("export failed: %v", err)
		return 1
	}
	log.Printf("wrote %s (%d students, %d sessions)", cfg.ExportPath, len(data.Roster), len(data.Sessions))
	return 0
}

func runServer(cfg config.App) error {
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg.DBPath)
	if errors.Is(err, store.ErrMissingDatabase) {
		log.Printf("no database at %s, creating", cfg.DBPath)
		st, err = store.Create(cfg.DBPath)
	}
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.New(cfg, st, exporter.Write).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var sweeper *cron.Cron
	if cfg.SweepEnabled {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.SweepSpec, func() {
			count, total, err := st.LogoutAll(store.Now())
			if err != nil {
				log.Printf("sweep failed: %v", err)
				return
			}
			log.Println(store.SweepMessage(count, total))
			data, err := st.ExportSnapshot()
			if err != nil {
				log.Printf("sweep export query failed: %v", err)
				return
			}
			if err := exporter.Write(cfg.ExportPath, data); err != nil {
				log.Printf("sweep export failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		sweeper.Start()
		log.Printf("sweep scheduled: %s", cfg.SweepSpec)
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
