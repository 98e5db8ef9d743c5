package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"annexops/internal/audit"
	"annexops/internal/evidence"
	"annexops/internal/export"
	exporthandler "annexops/internal/export/handler"
	exportmetrics "annexops/internal/export/metrics"
	jwttoken "annexops/internal/jwt_token"
	"annexops/internal/platform/config"
	"annexops/internal/platform/httpserver"
	"annexops/internal/platform/logger"
	"annexops/internal/platform/metrics"
	"annexops/internal/platform/middleware"
	platformredis "annexops/internal/platform/redis"
	"annexops/internal/section"
	sectionhandler "annexops/internal/section/handler"
	"annexops/internal/storage"
	"annexops/internal/system"
	systemhandler "annexops/internal/system/handler"
	"annexops/internal/version"
	versionhandler "annexops/internal/version/handler"
	"annexops/pkg/platform/httputil"
)

// main wires storage, services, and transport. Business rules live in the
// internal packages; this file only assembles them.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var db *sql.DB
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: Postgres when configured, memory otherwise.
	var (
		systemStore   system.Store
		versionStore  version.Store
		sectionStore  section.Store
		evidenceStore evidence.Store
		exportStore   export.Store
	)
	if db != nil {
		systemStore = system.NewPostgres(db)
		versionStore = version.NewPostgres(db)
		sectionStore = section.NewPostgres(db)
		evidenceStore = evidence.NewPostgres(db)
		exportStore = export.NewPostgres(db)
	} else {
		systemStore = system.NewInMemoryStore()
		versionStore = version.NewInMemoryStore()
		sectionStore = section.NewInMemoryStore()
		evidenceStore = evidence.NewInMemoryStore()
		exportStore = export.NewInMemoryStore()
	}

	// Audit facts flow through a buffered channel into the backing store so
	// request latency never includes audit persistence.
	auditBacking := audit.NewInMemoryStore()
	auditInbox := make(chan audit.Event, 256)
	auditPublisher := audit.NewPublisher(audit.NewChannelStore(auditInbox, auditBacking))
	auditWorker := audit.NewWorker(auditBacking, auditInbox)

	// Export bundles land on the filesystem; presigned URLs are cached in
	// Redis when configured.
	fsStore := storage.NewFilesystemStore(cfg.StorageDir, []byte(cfg.JWTSigningKey))
	objectStore := storage.ObjectStore(storage.NewPresignCache(fsStore, redisClient))

	// Services.
	systemSvc := system.NewService(systemStore, system.WithLogger(log))
	sectionSvc := section.NewService(sectionStore, versionStore, systemStore,
		section.WithLogger(log),
		section.WithAuditPublisher(auditPublisher),
	)
	versionSvc := version.NewService(versionStore, systemStore, sectionSvc, evidenceStore,
		version.WithLogger(log),
		version.WithAuditPublisher(auditPublisher),
	)
	exportSvc := export.NewService(
		exportStore, versionStore, systemStore, sectionSvc, evidenceStore, objectStore, versionSvc,
		export.WithLogger(log),
		export.WithAuditPublisher(auditPublisher),
		export.WithMetrics(exportmetrics.New()),
		export.WithPresignTTL(cfg.PresignTTL),
	)

	// Transport.
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "annexops")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)
	httpMetrics := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(httpMetrics.Latency)
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/healthz", healthHandler(db, redisClient))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Get("/downloads/*", downloadHandler(fsStore))

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		systemhandler.New(systemSvc, log).Register(r)
		versionhandler.New(versionSvc, log).Register(r)
		sectionhandler.New(sectionSvc, log).Register(r)
		exporthandler.New(exportSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting annexops", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				status["status"] = "degraded"
				status["postgres"] = err.Error()
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
			}
		}
		code := http.StatusOK
		if status["status"] != "ok" {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	}
}

// downloadHandler serves filesystem-store bundles after verifying the signed
// URL produced by PresignedGet.
func downloadHandler(fs *storage.FilesystemStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
			return
		}
		data, err := fs.Open(key, expires, r.URL.Query().Get("signature"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", "attachment")
		_, _ = w.Write(data)
	}
}
