package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hannah-myrrh/csu-biolab-alers/api/controllers"
	"github.com/hannah-myrrh/csu-biolab-alers/api/middleware"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/auth"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/equipment"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/laboratories"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/notifications"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/reservations"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/users"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/config"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/metrics"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/redis"
)

// Dependencies bundles everything the HTTP surface needs.
type Dependencies struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        *redis.Client
	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTPMetrics
	Auth         auth.Service
	Users        users.Service
	Laboratories laboratories.Service
	Equipment    equipment.Service
	Reservations reservations.Service
	Notify       notifications.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
				Post("/register", controllers.AuthRegister(deps.Auth, logg))
		})

		// Catalog browsing stays public; only mutations need a session.
		r.Get("/laboratories", controllers.ListLaboratories(deps.Laboratories, logg))
		r.Get("/laboratories/{labId}", controllers.GetLaboratory(deps.Laboratories, logg))
		r.Get("/equipment", controllers.ListEquipment(deps.Equipment, logg))
		r.Get("/equipment/{equipmentId}", controllers.GetEquipment(deps.Equipment, logg))
		r.Get("/equipment/{equipmentId}/availability", controllers.EquipmentAvailability(deps.Equipment, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequireAdmin(logg)).Get("/", controllers.ListUsers(deps.Users, logg))
				r.Get("/{userId}", controllers.GetUser(deps.Users, logg))
				r.Get("/{userId}/reservations", controllers.UserReservations(deps.Reservations, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/laboratories", controllers.CreateLaboratory(deps.Laboratories, logg))
				r.Delete("/laboratories/{labId}", controllers.DeleteLaboratory(deps.Laboratories, logg))
				r.Post("/equipment", controllers.CreateEquipment(deps.Equipment, logg))
				r.Put("/equipment/{equipmentId}/status", controllers.UpdateEquipmentStatus(deps.Equipment, logg))
				r.Delete("/equipment/{equipmentId}", controllers.DeleteEquipment(deps.Equipment, logg))
			})

			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", controllers.ListReservations(deps.Reservations, logg))
				r.Post("/", controllers.CreateReservation(deps.Reservations, logg))
				r.Get("/{reservationId}", controllers.GetReservation(deps.Reservations, logg))
				r.With(middleware.RequireAdmin(logg)).
					Put("/{reservationId}/status", controllers.TransitionReservation(deps.Reservations, logg))
				r.Put("/{reservationId}/complete", controllers.CompleteReservation(deps.Reservations, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notify, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notify, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notify, logg))
			})
		})
	})

	return r
}
