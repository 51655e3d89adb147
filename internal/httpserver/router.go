package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"stockroom/internal/analytics"
	"stockroom/internal/archive"
	"stockroom/internal/auth"
	"stockroom/internal/httpserver/handlers"
	"stockroom/internal/importer"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

type Deps struct {
	Store      *store.Store
	Analytics  *analytics.Service
	Importer   *importer.Importer
	Archiver   archive.Archiver
	Tokens     *auth.Tokens
	Sessions   auth.SessionStore
	SessionTTL time.Duration
	Logger     *zap.SugaredLogger
}

func NewRouter(d Deps) http.Handler {
	st, an, lg := d.Store, d.Analytics, d.Logger
	admin := string(models.RoleAdmin)
	manager := string(models.RoleManager)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Post("/v1/auth/login", handlers.Login(st, d.Tokens, d.Sessions, d.SessionTTL, lg))
	r.Group(func(protected chi.Router) {
		protected.Use(auth.Authenticate(d.Tokens, d.Sessions))
		protected.Get("/v1/me", handlers.Me(st, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(d.Sessions, lg))
		protected.Get("/v1/dashboard", handlers.Dashboard(an, lg))

		protected.Route("/v1/materials", func(m chi.Router) {
			m.Get("/", handlers.ListMaterials(st, lg))
			m.Post("/", handlers.CreateMaterial(st, lg))
			m.Get("/critical", handlers.CriticalMaterials(st, lg))
			m.Get("/barcode/{barcode}", handlers.MaterialByBarcode(st, lg))
			m.Post("/import", handlers.ImportMaterials(st, d.Importer, lg))
			m.Get("/{code}", handlers.GetMaterial(st, lg))
			m.Put("/{code}", handlers.UpdateMaterial(st, lg))
			m.Delete("/{code}", handlers.DeleteMaterial(st, lg))
		})
		protected.Get("/v1/movements", handlers.ListMovements(st, lg))
		protected.Post("/v1/movements", handlers.CreateMovement(st, lg))

		protected.Route("/v1/suppliers", func(s chi.Router) {
			s.Get("/", handlers.ListSuppliers(st, lg))
			s.Post("/", handlers.CreateSupplier(st, lg))
			s.Get("/{code}", handlers.GetSupplier(st, lg))
			s.Put("/{code}", handlers.UpdateSupplier(st, lg))
			s.Delete("/{code}", handlers.DeleteSupplier(st, lg))
		})
		protected.Route("/v1/orders", func(o chi.Router) {
			o.Get("/", handlers.ListOrders(st, lg))
			o.Post("/", handlers.CreateOrder(st, lg))
			o.Get("/{no}", handlers.GetOrder(st, lg))
			o.Put("/{no}/status", handlers.UpdateOrderStatus(st, lg))
		})
		protected.Route("/v1/requests", func(rq chi.Router) {
			rq.Get("/", handlers.ListRequests(st, lg))
			rq.Post("/", handlers.CreateRequest(st, lg))
			rq.Get("/pending", handlers.PendingRequests(st, lg))
			rq.Get("/{no}", handlers.GetRequest(st, lg))
			rq.Put("/{no}/complete", handlers.CompleteRequest(st, lg))
			rq.Group(func(approver chi.Router) {
				approver.Use(auth.RequireRole(admin, manager))
				approver.Put("/{no}/approve", handlers.ApproveRequest(st, lg))
				approver.Put("/{no}/reject", handlers.RejectRequest(st, lg))
			})
		})

		protected.Get("/v1/budget", handlers.BudgetSummary(st, lg))
		protected.Post("/v1/budget", handlers.CreateBudget(st, lg))
		protected.Post("/v1/budget/spend", handlers.ApplySpend(st, lg))

		protected.Get("/v1/notifications", handlers.ListNotifications(st, lg))
		protected.Post("/v1/notifications", handlers.CreateNotification(st, lg))
		protected.Get("/v1/notifications/unread/count", handlers.UnreadCount(st, lg))
		protected.Put("/v1/notifications/{id}/read", handlers.MarkRead(st, lg))

		protected.Get("/v1/reports/inventory", handlers.InventoryReport(an, lg))
		protected.Get("/v1/reports/movements", handlers.MovementReport(an, lg))
		protected.Get("/v1/reports/department", handlers.DepartmentReport(an, lg))
		protected.Get("/v1/reports/suppliers", handlers.SupplierReport(an, lg))
		protected.Get("/v1/analytics/monthly", handlers.MonthlyStats(an, lg))
		protected.Get("/v1/analytics/category", handlers.CategoryAnalytics(an, lg))
		protected.Get("/v1/analytics/trends", handlers.Trends(an, lg))
		protected.Get("/v1/predictions", handlers.Predictions(an, lg))
		protected.Get("/v1/enums/{name}", handlers.Enum)

		protected.Get("/v1/locations", handlers.ListLocations(st, lg))
		protected.Post("/v1/locations", handlers.CreateLocation(st, lg))
		protected.Delete("/v1/locations/{code}", handlers.DeleteLocation(st, lg))
		protected.Get("/v1/stock-counts", handlers.ListStockCounts(st, lg))
		protected.Post("/v1/stock-counts", handlers.CreateStockCount(st, lg))
		protected.Put("/v1/stock-counts/{no}/complete", handlers.CompleteStockCount(st, lg))

		protected.Group(func(adm chi.Router) {
			adm.Use(auth.RequireRole(admin))
			adm.Get("/v1/users", handlers.ListUsers(st, lg))
			adm.Post("/v1/users", handlers.CreateUser(st, lg))
			adm.Patch("/v1/users/{username}", handlers.UpdateUser(st, d.Sessions, lg))
			adm.Get("/v1/audit-logs", handlers.AuditLogs(st, lg))
			adm.Get("/v1/export/workbook", handlers.ExportWorkbook(st, lg))
			adm.Post("/v1/export/archive", handlers.ArchiveWorkbook(st, d.Archiver, lg))
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
