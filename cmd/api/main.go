package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/robfig/cron/v3"

	"github.com/lescale-paris/escale-backend/internal/config"
	"github.com/lescale-paris/escale-backend/internal/feed"
	"github.com/lescale-paris/escale-backend/internal/gemini"
	"github.com/lescale-paris/escale-backend/internal/logging"
	filestore "github.com/lescale-paris/escale-backend/internal/repository/file"
	miniostore "github.com/lescale-paris/escale-backend/internal/repository/minio"
	"github.com/lescale-paris/escale-backend/internal/repository/ports"
	"github.com/lescale-paris/escale-backend/internal/service"
	transport "github.com/lescale-paris/escale-backend/internal/transport/http"
	"github.com/lescale-paris/escale-backend/internal/util"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	var store ports.KeyValueStore
	if cfg.UseMinIO() {
		client, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("minio client: %v", err)
		}
		store, err = miniostore.NewKeyValueStore(ctx, client, cfg.MinIOBucketFavorites)
		if err != nil {
			log.Fatalf("minio store: %v", err)
		}
	} else {
		var err error
		store, err = filestore.NewKeyValueStore(cfg.FavoritesDir)
		if err != nil {
			log.Fatalf("file store: %v", err)
		}
	}

	gateway, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.DiscoveryWindowDays)
	if err != nil {
		log.Fatalf("gemini client: %v", err)
	}

	var stats *service.DiscoveryStatsService
	if cfg.ElasticURL != "" {
		es, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{cfg.ElasticURL},
			APIKey:    cfg.ElasticAPIKey,
		})
		if err != nil {
			log.Printf("discovery stats disabled: %v", err)
		} else {
			stats = service.NewDiscoveryStatsService(es, service.DiscoveryStatsConfig{LogIndex: cfg.DiscoveryLogIndex})
		}
	}

	rules := feed.DefaultRules()
	if cfg.CategoryRulesPath != "" {
		loaded, err := feed.LoadRules(cfg.CategoryRulesPath)
		if err != nil {
			log.Printf("category rules: falling back to defaults: %v", err)
		} else {
			rules = loaded
		}
	}

	discovery := service.NewDiscoveryService(gateway, stats, cfg.DiscoveryTimeout)
	favorites := service.NewFavoriteService(store, cfg.FavoritesNamespace)
	assistant := service.NewAssistantService(gateway)
	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterAuth(e, jwtManager)
	transport.RegisterEvents(e, jwtManager, discovery, favorites, rules, cfg.PastEventGrace, cfg.ShareBaseURL)
	transport.RegisterFavorites(e, jwtManager, favorites)
	transport.RegisterAssistant(e, jwtManager, assistant)
	transport.RegisterSwagger(e)

	if cfg.RefreshCron != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.RefreshCron, func() {
			discovery.Refresh(context.Background())
		}); err != nil {
			log.Printf("auto refresh disabled, invalid REFRESH_CRON %q: %v", cfg.RefreshCron, err)
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
