package http

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger returns the JSON logger shared by request logging and the services.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)
}

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	geofenceHandler GeofenceHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireIdentity)

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendancePunch))
					r.Post("/clock-in", attendanceHandler.ClockIn)
					r.Post("/clock-out", attendanceHandler.ClockOut)
					r.Post("/break-start", attendanceHandler.BreakStart)
					r.Post("/break-end", attendanceHandler.BreakEnd)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/status", attendanceHandler.Status)
					r.Get("/timesheets", attendanceHandler.Timesheets)
					r.Get("/policy", attendanceHandler.GetPolicy)
				})

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).
						Get("/whos-working", attendanceHandler.WhosWorking)

					r.Route("/review", func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceReview))
						r.Get("/", attendanceHandler.ListReview)
						r.Post("/", attendanceHandler.Review)
						r.Get("/{id}/history", attendanceHandler.ReviewHistory)
					})
				})

				// Owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOwner)
					r.Use(middleware.RequirePermission(user.PermissionPolicyManage))
					r.Put("/policy", attendanceHandler.UpdatePolicy)
				})
			})

			r.Route("/geofences", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionGeofenceManage))
				r.Get("/", geofenceHandler.List)
				r.Post("/", geofenceHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", geofenceHandler.Get)
					r.Patch("/", geofenceHandler.Update)
					r.Delete("/", geofenceHandler.Delete)
					r.Post("/assignments", geofenceHandler.Assign)
					r.Delete("/assignments/{employeeID}", geofenceHandler.Unassign)
				})
			})
		})
	})
	return r
}
