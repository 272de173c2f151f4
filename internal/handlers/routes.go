// internal/handlers/routes.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/fieldstock-be/internal/handlers/middleware"
	"github.com/ammerola/fieldstock-be/internal/pkg/metrics"
)

const apiV1 = "/api/v1"

// Router groups the handlers mounted on the HTTP server
type Router struct {
	Health      *HealthHandler
	StockUsage  *StockUsageHandler
	FaultyStock *FaultyStockHandler
	Reports     *ReportHandler
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Routes builds the root mux. Every /api/v1 route runs behind actor
// resolution; ops endpoints do not.
func (rt *Router) Routes() http.Handler {
	mux := http.NewServeMux()

	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /ready", rt.Health.Readiness)
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	mux.Handle(apiV1+"/", middleware.Actor(rt.Logger)(middleware.Metrics(rt.Metrics)(rt.api())))
	return mux
}

func (rt *Router) api() *http.ServeMux {
	mux := http.NewServeMux()

	// Stock usage and damage decisions
	mux.HandleFunc("POST "+apiV1+"/stock-usage", rt.StockUsage.CreateUsage)
	mux.HandleFunc("GET "+apiV1+"/stock-usage", rt.StockUsage.ListUsages)
	mux.HandleFunc("GET "+apiV1+"/stock-usage/{id}", rt.StockUsage.GetUsage)
	mux.HandleFunc("POST "+apiV1+"/stock-usage/{id}/approve", rt.StockUsage.ApproveDamage)
	mux.HandleFunc("POST "+apiV1+"/stock-usage/{id}/reject", rt.StockUsage.RejectDamage)
	mux.HandleFunc("GET "+apiV1+"/center-stock/{centerId}/{productId}", rt.StockUsage.GetCenterStock)

	// Faulty stock and repair transfers
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/transfer", rt.FaultyStock.TransferToRepairCenter)
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/mark-repaired", rt.FaultyStock.MarkRepaired)
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/mark-irreparable", rt.FaultyStock.MarkIrreparable)
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/return-from-repair", rt.FaultyStock.ReturnFromRepairCenter)
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/transfer-to-outlet", rt.FaultyStock.TransferToOutlet)
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/transfer-to-reseller", rt.FaultyStock.TransferToReseller)

	// Reports
	mux.HandleFunc("GET "+apiV1+"/faulty-stock/serials/{productId}", rt.Reports.Serials)
	mux.HandleFunc("GET "+apiV1+"/faulty-stock/repair-transfers/center", rt.Reports.RepairTransfers)
	mux.HandleFunc("GET "+apiV1+"/faulty-stock/under-repair", rt.Reports.UnderRepair)
	mux.HandleFunc("GET "+apiV1+"/faulty-stock/repaired", rt.Reports.Repaired)
	mux.HandleFunc("GET "+apiV1+"/faulty-stock/repair-transfers/export", rt.Reports.ExportRepairTransfers)
	mux.HandleFunc("POST "+apiV1+"/faulty-stock/repair-transfers/export/async", rt.Reports.RequestExport)
	mux.HandleFunc("POST "+apiV1+"/admin/ledger-audit", rt.Reports.RequestLedgerAudit)

	return mux
}
