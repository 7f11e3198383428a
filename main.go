package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/matst80/slask-storefront/pkg/analytics"
	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/config"
	"github.com/matst80/slask-storefront/pkg/messaging"
	"github.com/matst80/slask-storefront/pkg/preferences"
	"github.com/matst80/slask-storefront/pkg/server"
	"github.com/matst80/slask-storefront/pkg/storage"
	"github.com/matst80/slask-storefront/pkg/telemetry"
	"github.com/matst80/slask-storefront/pkg/types"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")

type stores struct {
	disk  *storage.DiskStorage
	redis *storage.PreferencesStore
}

// loadPreferences prefers an explicit file, then the shared redis copy, then the last
// snapshot written to disk.
func (s stores) loadPreferences(ctx context.Context, cfg *config.Config) (*types.Preferences, error) {
	if cfg.PreferencesPath != "" {
		log.Printf("Loading preferences from %s", cfg.PreferencesPath)
		return preferences.LoadFile(cfg.PreferencesPath)
	}
	if s.redis != nil {
		p, err := s.redis.Load(ctx, cfg.Storefront)
		if err == nil {
			log.Printf("Loaded preferences for %s from redis", cfg.Storefront)
			return p, nil
		}
		if !errors.Is(err, storage.ErrNoPreferences) {
			log.Printf("Failed to load preferences from redis: %v", err)
		}
	}
	log.Printf("Loading preferences snapshot from %s", cfg.DataDir)
	return s.disk.LoadPreferences()
}

func (s stores) save(p *types.Preferences) {
	if err := s.disk.SavePreferences(p); err != nil {
		log.Printf("Failed to save preferences snapshot: %v", err)
	}
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.redis.Save(ctx, s.disk.Storefront, p); err != nil {
		log.Printf("Failed to save preferences to redis: %v", err)
	}
}

func main() {
	flag.Parse()
	cfg := config.MustLoad()

	telemetryConfig := telemetry.Config{DSN: cfg.SentryDsn, Environment: cfg.Environment}
	flush, err := telemetry.Init(telemetryConfig)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	reporter := telemetry.NewReporter(telemetryConfig)

	st := stores{disk: storage.NewDiskStorage(cfg.Storefront, cfg.DataDir)}
	popular := analytics.NewPopularSearchFetcher(reporter)
	popular.HttpClient.Timeout = cfg.BackendTimeout

	var redisClient *redis.Client
	if cfg.HasRedis() {
		redisClient, err = storage.Connect(cfg.RedisUrl, cfg.RedisPassword)
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache: %v", err)
		} else {
			log.Printf("Cache enabled, url: %s", cfg.RedisUrl)
			st.redis = storage.NewPreferencesStore(redisClient)
			popular.Cache = storage.NewCache(redisClient)
			popular.CacheTTL = cfg.PopularCacheTTL
		}
	}

	prefs, err := st.loadPreferences(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to load preferences: %v", err)
	}
	if err := preferences.Validate(prefs); err != nil {
		log.Fatalf("Invalid preferences: %v", err)
	}

	storefront := server.NewStorefront(cfg.Storefront, prefs, server.ClientFactory(cfg.BackendTimeout))
	storefront.OnChange(st.save)
	st.save(prefs)

	var rabbitConn *amqp.Connection
	if cfg.HasRabbit() {
		rabbitConn, err = amqp.DialConfig(cfg.RabbitUrl, amqp.Config{
			Properties: amqp.NewConnectionProperties(),
		})
		if err != nil {
			log.Printf("Failed to connect to RabbitMQ, preferences will not be reloaded: %v", err)
		} else if err := messaging.ListenToPreferences(rabbitConn, cfg.Storefront, storefront.Apply); err != nil {
			log.Printf("Failed to listen for preference changes: %v", err)
		} else {
			log.Printf("Listening for preference changes for %s", cfg.Storefront)
		}
	}

	sessions := server.NewSessionStore(cfg.SessionTTL)
	ctx, cancel := context.WithCancel(context.Background())
	go sessions.Run(ctx, time.Minute)

	srv := server.NewWebServer(storefront, sessions, popular)

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeouts())
	servers := []*http.Server{
		common.NewServerWithTimeouts(cfg.ListenAddress, srv.Router(), timeouts),
		common.NewServerWithTimeouts(cfg.DebugAddress, debugMux, timeouts),
	}

	common.RunServersWithShutdown(servers, "storefront", timeouts.Shutdown, timeouts.Hook,
		func(ctx context.Context) error {
			cancel()
			sessions.CloseAll()
			return nil
		},
		func(ctx context.Context) error {
			if rabbitConn != nil {
				return rabbitConn.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			if redisClient != nil {
				return redisClient.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			flush()
			return nil
		},
	)
}
