package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"carsplay/internal/auth"
	mdapp "carsplay/internal/masterdata/application"
	masterdata "carsplay/internal/masterdata/domain"
	mdmemory "carsplay/internal/masterdata/infrastructure/memory"
	mdpostgres "carsplay/internal/masterdata/infrastructure/postgres"
	mdhttp "carsplay/internal/masterdata/interfaces/http"
	"carsplay/internal/observability/metrics"
	rentalapp "carsplay/internal/rental/application"
	"carsplay/internal/rental/application/eventbus"
	rental "carsplay/internal/rental/domain"
	"carsplay/internal/rental/infrastructure/storage"
	rentalinterfaces "carsplay/internal/rental/interfaces"
	rentalhttp "carsplay/internal/rental/interfaces/http"
	"carsplay/internal/rental/notify"
	timelog "carsplay/internal/timelog/domain"
	timelogmemory "carsplay/internal/timelog/infrastructure/memory"
	timelogpostgres "carsplay/internal/timelog/infrastructure/postgres"
	timeloghttp "carsplay/internal/timelog/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	rentalCfg, err := rentalapp.LoadConfig()
	if err != nil {
		logger.Fatalf("rental config error: %v", err)
	}

	metrics.Init()

	var (
		stationRepo masterdata.StationRepository
		rateRepo    masterdata.RateRepository
		timeLogRepo timelog.Repository
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		stationRepo = mdpostgres.NewStationRepository(db)
		rateRepo = mdpostgres.NewRateRepository(db)
		timeLogRepo = timelogpostgres.NewRepository(db)
	} else {
		logger.Printf("DATABASE_URL not set, using in-memory stores")
		stationRepo = mdmemory.NewStationRepository()
		rateRepo = mdmemory.NewRateRepository()
		timeLogRepo = timelogmemory.NewRepository()
	}

	stationService, err := mdapp.NewStationService(stationRepo, rateRepo)
	if err != nil {
		logger.Fatalf("station service error: %v", err)
	}

	userStore, err := auth.LoadUserStore(cfg.UsersFile)
	if err != nil {
		logger.Fatalf("user store error: %v", err)
	}
	loginHandler, err := auth.NewLoginHandler(userStore, []byte(cfg.JWTSecret))
	if err != nil {
		logger.Fatalf("login handler error: %v", err)
	}

	bus := eventbus.NewInMemoryBus()

	settledConsumer, err := rentalinterfaces.NewSessionSettledConsumer(timeLogRepo, stationService, logger)
	if err != nil {
		logger.Fatalf("settled consumer error: %v", err)
	}
	bus.SubscribeSessionSettled(settledConsumer.Handle)

	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	webhookURL := cfg.AlarmWebhookURL
	if webhookURL == "" {
		webhookURL = rentalCfg.Alarm.WebhookURL
	}
	if webhookURL != "" {
		channel, err := notify.NewWebhookChannel(webhookURL)
		if err != nil {
			logger.Fatalf("alarm webhook error: %v", err)
		}
		webhookNotifier, err := notify.NewChannelNotifier(channel,
			notify.WithRequestTimeout(rentalCfg.Alarm.Timeout),
			notify.WithLogger(logger),
		)
		if err != nil {
			logger.Fatalf("alarm notifier error: %v", err)
		}
		notifiers = append(notifiers, webhookNotifier)
	}
	completedConsumer, err := rentalinterfaces.NewSessionCompletedConsumer(notify.NewMultiNotifier(notifiers...))
	if err != nil {
		logger.Fatalf("completed consumer error: %v", err)
	}
	bus.SubscribeSessionCompleted(completedConsumer.Handle)

	snapshotStore, err := storage.NewFileSnapshotStore(cfg.SnapshotFile)
	if err != nil {
		logger.Fatalf("snapshot store error: %v", err)
	}
	scheduler := rentalapp.NewIntervalScheduler(rentalCfg.TickInterval)
	engine, err := rentalapp.NewEngine(
		rental.SystemClock{},
		scheduler,
		snapshotStore,
		stationService,
		bus,
		rentalCfg,
		logger,
		rentalapp.WithStationDirectory(stationService),
	)
	if err != nil {
		logger.Fatalf("rental engine error: %v", err)
	}
	if err := engine.Init(context.Background()); err != nil {
		logger.Fatalf("rental engine init error: %v", err)
	}
	defer engine.Close()

	masterdataHandler, err := mdhttp.NewHandler(stationService)
	if err != nil {
		logger.Fatalf("masterdata handler error: %v", err)
	}
	timerHandler, err := rentalhttp.NewHandler(engine)
	if err != nil {
		logger.Fatalf("timer handler error: %v", err)
	}
	timeLogHandler, err := timeloghttp.NewHandler(timeLogRepo)
	if err != nil {
		logger.Fatalf("timelog handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/api/login", "/healthz"}, []string{"/metrics"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/login", loginHandler)
	mux.Handle("/api/stations", masterdataHandler)
	mux.Handle("/api/stations/", masterdataHandler)
	mux.Handle("/api/time/rates", masterdataHandler)
	mux.Handle("/api/time/rates/", masterdataHandler)
	mux.Handle("/api/time/logs", timeLogHandler)
	mux.Handle("/api/time/report.xlsx", timeLogHandler)
	mux.Handle("/api/time/report.pdf", timeLogHandler)
	mux.Handle("/api/timers", timerHandler)
	mux.Handle("/api/timers/", timerHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	UsersFile       string
	SnapshotFile    string
	AlarmWebhookURL string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		UsersFile:       getenvDefault("USERS_FILE", "users.json"),
		SnapshotFile:    getenvDefault("SNAPSHOT_FILE", "timers.json"),
		AlarmWebhookURL: getenvDefault("ALARM_WEBHOOK_URL", ""),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.URL.Path, resp.status, duration)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
