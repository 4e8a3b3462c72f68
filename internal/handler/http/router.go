package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/handler/http/middleware"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const (
	appName    = "codeb-attendance"
	appVersion = "v1.0.0"
)

// NewLogger returns the process logger: JSON records shaped by the ECS schema.
func NewLogger(env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", env),
	)
}

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Handlers struct {
	Attendance    AttendanceHandler
	ChangeRequest ChangeRequestHandler
	WorkSettings  WorkSettingsHandler
	Report        ReportHandler
	Evaluation    EvaluationHandler
	Stream        StreamHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with a query token and must outlive the request timeout.
		r.Get("/attendance/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/checkin", h.Attendance.CheckIn)
				r.Post("/checkout", h.Attendance.CheckOut)

				r.Route("/session", func(r chi.Router) {
					r.Get("/", h.Attendance.GetTodaySessions)
					r.Post("/", h.Attendance.StartSession)
					r.Post("/end", h.Attendance.EndSession)
				})

				r.Get("/weekly", h.Attendance.GetWeeklySummary)
				r.Post("/presence-check", h.Attendance.ConfirmPresence)

				r.Route("/change-request", func(r chi.Router) {
					r.Get("/", h.ChangeRequest.List)
					r.Post("/", h.ChangeRequest.Submit)
					r.Get("/{id}", h.ChangeRequest.Get)
					r.Patch("/{id}", h.ChangeRequest.Review)
					r.Delete("/{id}", h.ChangeRequest.Cancel)
				})

				r.Route("/wifi", func(r chi.Router) {
					r.Get("/", h.WorkSettings.ListWifiNetworks)
					r.Post("/", h.WorkSettings.CreateWifiNetwork)
					r.Post("/verify", h.WorkSettings.VerifyWifi)
					r.Patch("/{id}", h.WorkSettings.UpdateWifiNetwork)
					r.Delete("/{id}", h.WorkSettings.DeleteWifiNetwork)
				})

				r.Get("/settings", h.WorkSettings.GetSettings)
				r.Put("/settings", h.WorkSettings.UpdateSettings)

				r.Get("/team", h.Report.TeamBoard)
				r.Get("/export", h.Report.ExportMonthly)

				r.Post("/stream/token", h.Stream.IssueToken)
			})

			r.Route("/evaluation", func(r chi.Router) {
				r.Get("/", h.Evaluation.List)
				r.Post("/weekly", h.Evaluation.SubmitWeekly)
				r.Get("/evaluators", h.Evaluation.ListEvaluators)
				r.Post("/evaluators", h.Evaluation.AddEvaluator)
				r.Delete("/evaluators/{userId}", h.Evaluation.RemoveEvaluator)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return r
}
