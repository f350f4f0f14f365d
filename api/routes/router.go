package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/istochnik/delivery-backend/api/controllers"
	"github.com/istochnik/delivery-backend/api/middleware"
	"github.com/istochnik/delivery-backend/internal/assignment"
	"github.com/istochnik/delivery-backend/internal/couriers"
	"github.com/istochnik/delivery-backend/internal/districts"
	"github.com/istochnik/delivery-backend/internal/drivers"
	"github.com/istochnik/delivery-backend/internal/orders"
	"github.com/istochnik/delivery-backend/internal/production"
	"github.com/istochnik/delivery-backend/internal/vehicles"
	"github.com/istochnik/delivery-backend/pkg/config"
	"github.com/istochnik/delivery-backend/pkg/db"
	"github.com/istochnik/delivery-backend/pkg/logger"
	"github.com/istochnik/delivery-backend/pkg/metrics"
	pkgredis "github.com/istochnik/delivery-backend/pkg/redis"
)

// Deps carries everything the router needs wired up.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *pkgredis.Client
	Registry    *prometheus.Registry
	Orders      orders.Service
	Assignments assignment.Service
	Drivers     drivers.Service
	Vehicles    vehicles.Service
	Districts   districts.Service
	Couriers    couriers.Service
	Production  production.Service
	Now         func() time.Time
}

// New assembles the HTTP router: global middleware, health and metrics
// endpoints, back-office routes, the CRM sync webhook and the driver app
// group behind JWT auth.
func New(deps Deps) chi.Router {
	cfg := deps.Config
	logg := deps.Logger

	httpMetrics := metrics.NewHTTPMetrics(deps.Registry)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer(logg))
	router.Use(middleware.RequestID(logg))
	router.Use(middleware.Logging(logg))
	router.Use(middleware.Metrics(httpMetrics))
	router.Use(middleware.CORS())

	router.Get("/health/live", controllers.HealthLive(cfg))
	router.Get("/health/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))

	if deps.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/history", controllers.OrdersHistory(deps.Orders, logg))
			r.Post("/export-mark", controllers.OrdersExportMark(deps.Orders, logg))
			r.Get("/{id}", controllers.OrderGet(deps.Orders, logg))
			r.Patch("/{id}", controllers.OrderPatch(deps.Orders, logg))
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", controllers.AssignmentsList(deps.Assignments, logg))
			r.Put("/", controllers.AssignmentUpsert(deps.Assignments, logg))
			r.Post("/auto", controllers.AssignmentsAuto(deps.Assignments, logg))
			r.Delete("/{id}", controllers.AssignmentCancel(deps.Assignments, logg))
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", controllers.DriversList(deps.Drivers, logg))
			r.Post("/", controllers.DriverCreate(deps.Drivers, logg))
			r.Get("/{id}", controllers.DriverGet(deps.Drivers, logg))
			r.Patch("/{id}", controllers.DriverUpdate(deps.Drivers, logg))
			r.Delete("/{id}", controllers.DriverDelete(deps.Drivers, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehiclesList(deps.Vehicles, logg))
			r.Post("/", controllers.VehicleCreate(deps.Vehicles, logg))
			r.Get("/{id}", controllers.VehicleGet(deps.Vehicles, logg))
			r.Patch("/{id}", controllers.VehicleUpdate(deps.Vehicles, logg))
			r.Delete("/{id}", controllers.VehicleDeactivate(deps.Vehicles, logg))
		})

		r.Route("/districts", func(r chi.Router) {
			r.Get("/", controllers.DistrictsList(deps.Districts, logg))
			r.Post("/", controllers.DistrictCreate(deps.Districts, logg))
			r.Post("/sync", controllers.DistrictsSync(deps.Districts, logg))
			r.Get("/{id}", controllers.DistrictGet(deps.Districts, logg))
			r.Patch("/{id}", controllers.DistrictUpdate(deps.Districts, logg))
			r.Delete("/{id}", controllers.DistrictDeactivate(deps.Districts, logg))
		})

		r.Route("/couriers", func(r chi.Router) {
			r.Get("/", controllers.CouriersList(deps.Couriers, logg))
			r.Post("/", controllers.CourierCreate(deps.Couriers, logg))
			r.Get("/{id}", controllers.CourierGet(deps.Couriers, logg))
			r.Patch("/{id}", controllers.CourierUpdate(deps.Couriers, logg))
			r.Delete("/{id}", controllers.CourierDelete(deps.Couriers, logg))
		})

		r.Route("/production/sessions", func(r chi.Router) {
			r.Get("/", controllers.ProductionList(deps.Production, logg))
			r.Post("/", controllers.ProductionRecord(deps.Production, logg))
		})

		r.Post("/crm/orders/sync", controllers.CRMOrdersSync(deps.Orders, logg))

		r.Route("/driver", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(cfg.LoginLimit, deps.Redis, logg)).
				Post("/login", controllers.DriverLogin(deps.Drivers, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.DriverAuth(cfg.JWT, logg))
				r.Get("/tasks", controllers.DriverTasks(deps.Assignments, deps.Now, logg))
				r.Post("/tasks/{id}/accept", controllers.DriverTaskAccept(deps.Assignments, logg))
				r.Post("/tasks/{id}/deliver", controllers.DriverTaskDeliver(deps.Assignments, logg))
				r.Post("/status", controllers.DriverStatus(deps.Drivers, logg))
			})
		})
	})

	return router
}
