package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/company"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/review"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/ratelimit"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	companyService "github.com/cmlabs-hris/attendance-engine/internal/service/company"
	geofenceService "github.com/cmlabs-hris/attendance-engine/internal/service/geofence"
	punchService "github.com/cmlabs-hris/attendance-engine/internal/service/punch"
	reviewService "github.com/cmlabs-hris/attendance-engine/internal/service/review"
	shiftService "github.com/cmlabs-hris/attendance-engine/internal/service/shift"
	statusService "github.com/cmlabs-hris/attendance-engine/internal/service/status"
	timesheetService "github.com/cmlabs-hris/attendance-engine/internal/service/timesheet"
	"github.com/cmlabs-hris/attendance-engine/migrations"
	"github.com/redis/go-redis/v9"
)

type repositories struct {
	tx        database.Transactor
	punches   punch.PunchRepository
	employees employee.EmployeeRepository
	geofences geofence.GeofenceRepository
	policies  company.PolicyRepository
	reviews   review.ReviewRepository
	close     func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Engine.StoreType == "memory" {
		slog.Warn("Using in-memory store, punches are lost on restart")
		store := memory.NewStore()
		return &repositories{
			tx:        store,
			punches:   store.Punches(),
			employees: store.Employees(),
			geofences: store.Geofences(),
			policies:  store.Policies(),
			reviews:   store.Reviews(),
			close:     func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &repositories{
		tx:        postgresql.NewTransactor(db),
		punches:   postgresql.NewPunchRepository(db),
		employees: postgresql.NewEmployeeRepository(db),
		geofences: postgresql.NewGeofenceRepository(db),
		policies:  postgresql.NewPolicyRepository(db),
		reviews:   postgresql.NewReviewRepository(db),
		close:     db.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := appHTTP.NewLogger(os.Stdout, level, cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer repos.close()

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		defer rdb.Close()
	}

	var locker lock.Locker
	var limiter ratelimit.Limiter
	switch cfg.Engine.LockType {
	case "redis":
		locker = lock.NewRedisLocker(rdb, "attendance:lock", cfg.Engine.PunchLockTTL)
		limiter = ratelimit.NewRedisLimiter(rdb, "attendance:ratelimit", cfg.Engine.PunchRateLimit, cfg.Engine.PunchRateWindow)
	default:
		locker = lock.NewMemoryLocker()
		limiter = ratelimit.NewMemoryLimiter(cfg.Engine.PunchRateLimit, cfg.Engine.PunchRateWindow)
	}

	var boardCache cache.Cache
	switch cfg.Engine.CacheType {
	case "redis":
		boardCache = cache.NewRedisCache(rdb, "attendance:cache")
	default:
		boardCache = cache.NewMemoryCache()
	}

	policySvc := companyService.NewPolicyService(repos.policies, cfg.Engine.DefaultPolicy())
	shiftSvc := shiftService.NewShiftService(repos.punches, policySvc, cfg.Engine.ReconstructLookahead, nil)
	statusSvc := statusService.NewStatusService(
		repos.punches,
		repos.employees,
		shiftSvc,
		boardCache,
		cfg.Engine.StatusCacheTTL,
		cfg.Engine.StatusFreshnessBound,
		nil,
	)
	resolver := geofenceService.NewResolver(repos.geofences, repos.employees, cfg.Engine.GeofenceLookupTimeout)
	punchSvc := punchService.NewPunchService(
		repos.tx,
		repos.punches,
		repos.employees,
		policySvc,
		resolver,
		shiftSvc,
		statusSvc,
		locker,
		limiter,
		nil,
	)
	reviewSvc := reviewService.NewReviewService(repos.tx, repos.punches, repos.reviews, repos.employees, statusSvc, nil)
	timesheetSvc := timesheetService.NewTimesheetService(repos.punches, repos.employees, policySvc, shiftSvc, nil)
	geofenceSvc := geofenceService.NewGeofenceService(repos.geofences, repos.employees)

	scheduler := cron.NewScheduler(ctx)
	scheduler.AddJob(cron.Job{
		Name:     "status-prewarm",
		Interval: cfg.Engine.StatusPrewarmInterval,
		Timeout:  cfg.Engine.StatusPrewarmInterval,
		Fn:       cron.StatusPrewarmJob(repos.punches, statusSvc, cfg.Engine.StatusLookback, nil),
	})
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceHandler := appHTTP.NewAttendanceHandler(punchSvc, statusSvc, timesheetSvc, reviewSvc, policySvc)
	geofenceHandler := appHTTP.NewGeofenceHandler(geofenceSvc)

	origins := cfg.App.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router := appHTTP.NewRouter(logger, origins, JWTService, attendanceHandler, geofenceHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Engine.StoreType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
