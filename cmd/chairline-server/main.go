package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"chairline/backend/internal/config"
	"chairline/backend/internal/directory"
	"chairline/backend/internal/schedule"
	"chairline/backend/internal/service/appointments"
	"chairline/backend/internal/store"
	"chairline/backend/internal/store/boltdb"
	"chairline/backend/internal/store/jsonfile"
	"chairline/backend/internal/store/redisdb"
	"chairline/backend/internal/store/sqldb"
	grpcTransport "chairline/backend/internal/transport/grpc"
	httpTransport "chairline/backend/internal/transport/http"
	"chairline/backend/internal/waitlist"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "chairline-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "chairline-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_backend", cfg.StoreBackend),
		slog.Bool("strict_writes", cfg.StoreStrictWrites),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, closeStore, err := openSubstrate(ctx, log, cfg)
	if err != nil {
		log.Error("store open failed", slog.Any("err", err), slog.String("store_backend", cfg.StoreBackend))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	opts := store.Options{Logger: log, StrictWrites: cfg.StoreStrictWrites}

	clients := directory.NewClients(sub, opts)
	staff := directory.NewStaff(sub, opts, directory.NewBcryptHasher(cfg.BcryptCost))
	services := directory.NewServices(sub, opts)
	appts := schedule.NewStore(sub, opts)
	queue := waitlist.New(sub, opts)

	log.Info("stores loaded",
		slog.Int("clients", clients.Load(ctx)),
		slog.Int("staff", staff.Load(ctx)),
		slog.Int("services", services.Load(ctx)),
		slog.Int("appointments", appts.Load(ctx)),
		slog.Int("waiting", queue.Load(ctx)),
	)

	if cfg.SeedCatalog {
		added, err := services.SeedCatalog(ctx)
		if err != nil {
			log.Error("catalog seed failed", slog.Any("err", err))
			os.Exit(1)
		}
		if added > 0 {
			log.Info("catalog seeded", slog.Int("added", added))
		}
	}

	if cfg.AdminUsername != "" {
		admin, created, err := staff.Bootstrap(ctx, directory.NewStaffMember{
			Name:       cfg.AdminName,
			NationalID: cfg.AdminNationalID,
			Username:   cfg.AdminUsername,
			Password:   cfg.AdminPassword,
		})
		if err != nil {
			log.Error("administrator seed failed", slog.Any("err", err))
			os.Exit(1)
		}
		if created {
			log.Info("administrator seeded", slog.Int64("staff_id", admin.ID), slog.String("username", admin.Username))
		}
	}
	if cfg.RequireOperator && len(staff.List()) == 0 {
		log.Warn("operator required but no staff registered; set CHAIRLINE_ADMIN_USERNAME and CHAIRLINE_ADMIN_PASSWORD")
	}

	svc := appointments.NewService(appointments.Deps{
		Clients:      clients,
		Staff:        staff,
		Services:     services,
		Appointments: appts,
		Waitlist:     queue,
		Logger:       log,
	})

	grpcServer, healthServer := grpcTransport.NewServer(
		grpcTransport.NewBookingServer(svc, grpcTransport.BookingServerOptions{
			RequireOperator: cfg.RequireOperator,
			Logger:          log,
		}),
		grpcTransport.ServerOptions{RequestTimeout: cfg.GRPCRequestTimeout, Logger: log},
	)

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpTransport.NewRouter(httpTransport.Deps{
			Clients:         clients,
			Staff:           staff,
			Services:        services,
			Appointments:    svc,
			Logger:          log,
			RequireOperator: cfg.RequireOperator,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("servers started", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("http_addr", cfg.HTTPAddr))

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped with error", slog.Any("err", err))
			exitCode = 1
		}
	}

	shutdown(log, grpcServer, healthServer, httpServer, cfg.ShutdownTimeout)

	// Queue entries only reach the store when persisted explicitly; flush
	// whatever is still waiting so a restart does not lose it.
	if n, err := svc.PersistWaitingQueue(context.Background()); err != nil {
		log.Error("waiting queue flush failed", slog.Any("err", err))
	} else {
		log.Info("waiting queue flushed", slog.Int("count", n))
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func openSubstrate(ctx context.Context, log *slog.Logger, cfg config.Config) (store.Substrate, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendSQLite, config.BackendPostgres:
		isSQLite := strings.HasPrefix(cfg.DatabaseURL, "sqlite://")
		if isSQLite != (cfg.StoreBackend == config.BackendSQLite) {
			return nil, noop, fmt.Errorf("store.backend %q does not match database.url scheme", cfg.StoreBackend)
		}
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := sqldb.Open(cfg.DatabaseURL, sqldb.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			return nil, noop, err
		}
		docs := sqldb.NewDocuments(db)
		if err := docs.EnsureSchema(ctx); err != nil {
			_ = sqldb.Close(db)
			return nil, noop, err
		}
		if names, err := docs.Names(ctx); err == nil {
			log.Info("database stores present", slog.Any("stores", names))
		}
		return docs, func() error { return sqldb.Close(db) }, nil

	case config.BackendBolt:
		sub, err := boltdb.Open(cfg.BoltPath)
		if err != nil {
			return nil, noop, err
		}
		return sub, sub.Close, nil

	case config.BackendRedis:
		sub, err := redisdb.Open(ctx, redisdb.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return sub, sub.Close, nil

	default:
		sub, err := jsonfile.New(cfg.StoreDir)
		if err != nil {
			return nil, noop, err
		}
		return sub, noop, nil
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, hs *health.Server, h *http.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))
	hs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed", slog.Any("err", err))
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	if strings.HasPrefix(databaseURL, "sqlite://") {
		return []any{slog.String("db_driver", "sqlite"), slog.String("db_path", strings.TrimPrefix(databaseURL, "sqlite://"))}
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_driver", "postgres"),
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
