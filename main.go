package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gw2_isac/analysispool"
	"gw2_isac/archive"
	"gw2_isac/cache"
	"gw2_isac/eilog"
	"gw2_isac/frontend"
	"gw2_isac/gw2"
	"gw2_isac/history"
	"gw2_isac/share"
	"gw2_isac/wingman"

	"github.com/gin-gonic/gin"
)

// bump when the report document changes shape
const resultsVersion = "results-1"

func main() {
	cfg, err := share.LoadConfig()
	if err != nil {
		log.Fatalf("%+v", err)
	}

	if cfg.SentryDsn != "" {
		err = share.InitSentry(cfg.SentryDsn)
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refs, err := gw2.Load(cfg.DataDir)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	logCache, err := cache.New(filepath.Join(cfg.CacheDir, "logs"), eilog.SchemaVersion)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	results, err := cache.New(filepath.Join(cfg.CacheDir, "results"), resultsVersion)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	h, err := history.New(cfg.Database)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer h.Close()

	arc, err := archive.New(ctx, cfg.ArchiveBucket, cfg.AwsEndpointURL)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	httpClient := share.NewHTTPClient()

	bench := wingman.NewCache(
		wingman.NewClient(cfg.WingmanURL, httpClient, 500*time.Millisecond),
		cfg.Workers,
	)
	go bench.Run(ctx, cfg.WingmanRefresh)

	svc := analysispool.New(analysispool.Options{
		Logs:    eilog.NewClient(cfg.DpsReportURL, httpClient, logCache, 100*time.Millisecond),
		Refs:    refs,
		Bench:   bench,
		History: h,
		Archive: arc,
		Results: results,
		Workers: cfg.Workers,
	})

	queue := analysispool.NewQueue(ctx, svc)
	queue.EnableRecaptcha(cfg.RecaptchaSecret)

	g := gin.New()
	frontend.Route(g, &frontend.Server{
		Service: svc,
		Queue:   queue,
		History: h,
		Wingman: bench,
	})

	log.Printf("Listening on %s", cfg.Listen)
	err = g.Run(cfg.Listen)
	if err != nil {
		share.Report(err)
	}
}
