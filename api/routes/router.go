package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/controllers"
	"github.com/jorgenomente/GestockMultitenant-sub000/api/middleware"
	ordersvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	snapsvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/snapshots"
	statesvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/uistate"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/config"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	ordersService ordersvc.Service,
	snapshotService snapsvc.Service,
	uiStateService statesvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Scope(logg))

		r.Get("/providers/{providerId}/order", controllers.OrderGetOrCreate(ordersService, logg))

		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/", controllers.OrderGet(ordersService, logg))
			r.Patch("/", controllers.OrderUpdateHeader(ordersService, logg))

			r.Post("/items", controllers.ItemAdd(ordersService, logg))
			r.Patch("/items/{itemId}", controllers.ItemUpdate(ordersService, logg))
			r.Delete("/items/{itemId}", controllers.ItemDelete(ordersService, logg))

			r.Post("/groups", controllers.GroupAdd(ordersService, logg))
			r.Post("/groups/delete", controllers.GroupDelete(ordersService, logg))

			r.Post("/items/bulk", controllers.BulkAddItems(ordersService, logg))
			r.Delete("/items/bulk", controllers.BulkRemoveByNames(ordersService, logg))
			r.Post("/apply-suggested", controllers.ApplySuggested(ordersService, logg))
			r.Post("/zero-quantities", controllers.ZeroAllQuantities(ordersService, logg))
			r.Post("/save-previous-quantities", controllers.SavePreviousQuantities(ordersService, logg))
			r.Get("/clipboard", controllers.OrderClipboard(ordersService, uiStateService, logg))

			r.Get("/export", controllers.WorkbookExport(ordersService, logg))
			r.Post("/import", controllers.WorkbookImport(ordersService, logg))

			r.Post("/snapshots", controllers.SnapshotSave(snapshotService, logg))
			r.Get("/snapshots", controllers.SnapshotList(snapshotService, logg))

			r.Route("/ui-state", func(r chi.Router) {
				r.Get("/", controllers.UIStateGet(uiStateService, logg))
				r.Put("/group-order", controllers.UIStateSaveGroupOrder(uiStateService, logg))
				r.Post("/group-order/move", controllers.UIStateMoveGroup(uiStateService, logg))
				r.Post("/group-order/rename", controllers.UIStateRenameGroup(uiStateService, logg))
				r.Post("/confirm", controllers.UIStateSetConfirmed(uiStateService, logg))
				r.Post("/confirm-all", controllers.UIStateSetAllConfirmed(uiStateService, logg))
			})
		})

		r.Route("/snapshots/{snapshotId}", func(r chi.Router) {
			r.Post("/open", controllers.SnapshotOpen(snapshotService, logg))
			r.Delete("/", controllers.SnapshotDelete(snapshotService, logg))
		})
	})

	return r
}
