// README: Entry point; loads config, wires stores and services, starts the HTTP server and the webhook sender.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"kavach/internal/config"
	httptransport "kavach/internal/http"
	"kavach/internal/infra"
	"kavach/internal/modules/location"
	"kavach/internal/modules/report"
	"kavach/internal/modules/station"
	"kavach/internal/notify"
	"kavach/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("KAVACH_FIREBASE_PROJECT_ID is required")
	}
	fb, err := infra.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	verifier, err := fb.Verifier(ctx)
	if err != nil {
		log.Fatalf("firebase auth: %v", err)
	}

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	var (
		stationRepo station.Repository
		reportRepo  report.Repository
		ready       func(context.Context) error
	)
	switch cfg.Store.Backend {
	case config.StoreFirestore:
		var fs *firestore.Client
		fs, err = fb.Firestore(ctx)
		if err != nil {
			log.Fatalf("firestore init: %v", err)
		}
		defer fs.Close()
		stationRepo = station.NewFirestoreStore(fs)
		reportRepo = report.NewFirestoreStore(fs)
		ready = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	default:
		var pool *pgxpool.Pool
		pool, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		stationRepo = station.NewPGStore(pool)
		reportRepo = report.NewPGStore(pool)
		ready = func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		}
	}
	stationRepo = station.NewCachedRepository(stationRepo, redisClient, cfg.Cache.StationTTL, logger)
	stationSvc := station.NewService(stationRepo, logger)

	var geocoder location.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := location.NewGoogleGeocoder(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps client: %v", err)
		}
		geocoder = g
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; districts resolve to Unknown")
	}
	locationSvc := location.NewService(geocoder, location.NewStore(redisClient, cfg.Cache.GeocodeTTL), cfg.Cache.GeocodeCell, logger)

	var classifier triage.Classifier
	if cfg.AI.GeminiKey != "" {
		g, err := triage.NewGeminiClassifier(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		defer g.Close()
		classifier = g
	}

	var notifiers notify.Multi
	var sender *notify.WebhookSender
	if cfg.Webhook.URL != "" {
		queue := notify.NewWebhookQueue(redisClient, notify.DefaultQueueKey)
		notifiers = append(notifiers, queue)
		sender = notify.NewWebhookSender(logger, cfg.Webhook.URL, cfg.Webhook.Secret, queue)
	}
	if cfg.Firebase.PushEnabled {
		mc, err := fb.Messaging(ctx)
		if err != nil {
			log.Fatalf("firebase messaging: %v", err)
		}
		notifiers = append(notifiers, notify.NewFCMNotifier(mc))
	}
	var notifier notify.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	}

	tz, err := time.LoadLocation(cfg.Geo.TimeZone)
	if err != nil {
		log.Fatal(err)
	}
	reportSvc := report.NewService(reportRepo, stationSvc, locationSvc, report.Options{
		Triage:         classifier,
		Notifier:       notifier,
		CellResolution: cfg.Geo.ReportCell,
		RepoTimeout:    cfg.Store.RepoTimeout,
		GeocodeTimeout: cfg.Maps.Timeout,
		TriageTimeout:  cfg.AI.Timeout,
		TimeZone:       tz,
		Logger:         logger,
	})
	stationSvc.SetReportChecker(reportSvc)

	srv := httptransport.NewServer(httptransport.ServerDeps{
		Reports:   reportSvc,
		Stations:  stationSvc,
		Verifier:  verifier,
		Logger:    logger,
		Nearby:    cfg.Nearby,
		RateLimit: cfg.RateLimit,
		Ready:     ready,
	})
	handler, err := srv.Routes()
	if err != nil {
		log.Fatal(err)
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	if sender != nil {
		go sender.Run(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", slog.Any("error", err))
		}
	}()

	logger.Info("kavach api listening",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("store", cfg.Store.Backend),
		slog.Bool("geocoder", geocoder != nil),
		slog.Bool("triage", classifier != nil),
		slog.Int("notifiers", len(notifiers)),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
