// internal/handlers/reports_test.go
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/fieldstock-be/internal/adapters/storage"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/handlers"
	"github.com/ammerola/fieldstock-be/test/helpers"
	"github.com/ammerola/fieldstock-be/test/mocks"
)

func reportActor() *domain.Actor {
	return domain.NewActor("auditor", uuid.New(), map[domain.Capability]domain.Scope{
		domain.CapReportView:  domain.ScopeAllCenters,
		domain.CapLedgerAudit: domain.ScopeAllCenters,
	})
}

func newReportHandler(t *testing.T) (*handlers.ReportHandler, *mocks.MockReportingService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockReportingService(ctrl)
	return handlers.NewReportHandler(mockService, handlers.Options{}, helpers.TestLogger()), mockService
}

func TestReportHandler_Serials(t *testing.T) {
	actor := reportActor()
	product, center := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		productID      string
		query          string
		setupMocks     func(*mocks.MockReportingService)
		expectedStatus int
	}{
		{
			name:      "filters_by_center_and_status",
			productID: product.String(),
			query:     "?centerId=" + center.String() + "&status=under_repair",
			setupMocks: func(m *mocks.MockReportingService) {
				status := domain.SerialUnderRepair
				m.EXPECT().
					Serials(gomock.Any(), actor, ports.SerialsQuery{ProductID: product, CenterID: &center, Status: &status}).
					Return(&ports.SerialsReport{ProductID: product, Serials: []ports.SerialEntry{}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_product",
			productID:      "nope",
			setupMocks:     func(m *mocks.MockReportingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_status",
			productID:      product.String(),
			query:          "?status=broken",
			setupMocks:     func(m *mocks.MockReportingService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := newReportHandler(t)
			tt.setupMocks(mockService)

			req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/serials/"+tt.productID+tt.query, nil, actor)
			req.SetPathValue("productId", tt.productID)
			w := httptest.NewRecorder()

			handler.Serials(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestReportHandler_RepairTransfers(t *testing.T) {
	actor := reportActor()
	handler, mockService := newReportHandler(t)

	mockService.EXPECT().
		RepairTransfersForCenter(gomock.Any(), actor, gomock.Any()).
		DoAndReturn(func(_ any, _ *domain.Actor, q ports.RepairTransferQuery) (*ports.RepairTransferPage, error) {
			require.NotNil(t, q.Status)
			assert.Equal(t, domain.RepairStatusPartiallyRepaired, *q.Status)
			assert.Equal(t, 3, q.Page)
			assert.Equal(t, 20, q.PageSize)
			return &ports.RepairTransferPage{
				ListResult: &ports.ListResult[*domain.RepairTransferRecord]{Items: []*domain.RepairTransferRecord{}, Page: 3, PageSize: 20},
				Dashboard: map[domain.RepairStatus]ports.StatusSummary{
					domain.RepairStatusUnderRepair: {Count: 2, TotalQuantity: 5},
				},
			}, nil
		})

	req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/repair-transfers/center?status=partially_repaired&page=3", nil, actor)
	w := httptest.NewRecorder()

	handler.RepairTransfers(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Page      int                                          `json:"page"`
		Dashboard map[domain.RepairStatus]ports.StatusSummary `json:"dashboard"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, 3, data.Page)
	assert.Equal(t, 5, data.Dashboard[domain.RepairStatusUnderRepair].TotalQuantity)
}

func TestReportHandler_Repaired_DefaultWindow(t *testing.T) {
	actor := reportActor()
	handler, mockService := newReportHandler(t)

	mockService.EXPECT().
		RepairedInPeriod(gomock.Any(), actor, gomock.Any(), gomock.Any(), (*uuid.UUID)(nil)).
		DoAndReturn(func(_ any, _ *domain.Actor, from, to time.Time, _ *uuid.UUID) ([]ports.ProductQuantity, error) {
			assert.WithinDuration(t, time.Now(), to, time.Minute)
			assert.Equal(t, 30*24*time.Hour, to.Sub(from))
			return []ports.ProductQuantity{{ProductID: uuid.New(), Quantity: 4, Cost: decimal.NewFromInt(40)}}, nil
		})

	req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/repaired", nil, actor)
	w := httptest.NewRecorder()

	handler.Repaired(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Products []ports.ProductQuantity `json:"products"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &data))
	require.Len(t, data.Products, 1)
	assert.Equal(t, 4, data.Products[0].Quantity)
}

func TestReportHandler_Repaired_ExplicitDates(t *testing.T) {
	actor := reportActor()
	handler, mockService := newReportHandler(t)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mockService.EXPECT().
		RepairedInPeriod(gomock.Any(), actor, from, to, gomock.Any()).
		Return([]ports.ProductQuantity{}, nil)

	req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/repaired?from=2026-01-01&to=2026-02-01T00:00:00Z", nil, actor)
	w := httptest.NewRecorder()

	handler.Repaired(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandler_UnderRepair(t *testing.T) {
	actor := reportActor()
	center := uuid.New()
	handler, mockService := newReportHandler(t)

	mockService.EXPECT().
		UnderRepair(gomock.Any(), actor, &center).
		Return([]ports.ProductQuantity{{ProductID: uuid.New(), CenterID: center, Quantity: 3}}, nil)

	req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/under-repair?centerId="+center.String(), nil, actor)
	w := httptest.NewRecorder()

	handler.UnderRepair(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var data []ports.ProductQuantity
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, 3, data[0].Quantity)
}

func TestReportHandler_ExportRepairTransfers(t *testing.T) {
	actor := reportActor()
	handler, mockService := newReportHandler(t)

	transfer := newTransfer(uuid.New(), uuid.New(), uuid.New(), "SN-1", "SN-2")
	mockService.EXPECT().
		ExportRepairTransfers(gomock.Any(), actor, gomock.Any()).
		DoAndReturn(func(_ any, _ *domain.Actor, req domain.ExportRequest) ([]*domain.RepairTransferRecord, error) {
			require.NotNil(t, req.Status)
			assert.Equal(t, domain.RepairStatusUnderRepair, *req.Status)
			return []*domain.RepairTransferRecord{transfer}, nil
		})

	req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/repair-transfers/export?status=under_repair", nil, actor)
	w := httptest.NewRecorder()

	handler.ExportRepairTransfers(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, storage.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"repair_transfers_")
	assert.Equal(t, strconv.Itoa(w.Body.Len()), w.Header().Get("Content-Length"))

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	sheet := file.Sheet["Repair Transfers"]
	require.NotNil(t, sheet)
	assert.Equal(t, 2, sheet.MaxRow)
}

func TestReportHandler_ExportRepairTransfers_TooManyRows(t *testing.T) {
	handler, mockService := newReportHandler(t)
	mockService.EXPECT().
		ExportRepairTransfers(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.NewValidationError("export matches %d transfers, limit is %d", 20000, 10000))

	req := newActorRequest(t, http.MethodGet, "/api/v1/faulty-stock/repair-transfers/export", nil, reportActor())
	w := httptest.NewRecorder()

	handler.ExportRepairTransfers(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestReportHandler_RequestExport(t *testing.T) {
	actor := reportActor()
	center := uuid.New()

	tests := []struct {
		name           string
		body           any
		setupMocks     func(*mocks.MockReportingService)
		expectedStatus int
	}{
		{
			name: "queues_with_body",
			body: map[string]any{"centerId": center, "status": "returned"},
			setupMocks: func(m *mocks.MockReportingService) {
				status := domain.RepairStatusReturned
				m.EXPECT().
					RequestExport(gomock.Any(), actor, domain.ExportRequest{FromCenterID: &center, Status: &status}).
					Return("task-123", nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "queues_without_body",
			setupMocks: func(m *mocks.MockReportingService) {
				m.EXPECT().RequestExport(gomock.Any(), actor, domain.ExportRequest{}).Return("task-123", nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "rejects_unknown_status",
			body:           map[string]any{"status": "lost"},
			setupMocks:     func(m *mocks.MockReportingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "permission_denied",
			setupMocks: func(m *mocks.MockReportingService) {
				m.EXPECT().RequestExport(gomock.Any(), actor, gomock.Any()).
					Return("", domain.NewPermissionDenied(domain.CapReportView, domain.ScopeOwnCenter))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := newReportHandler(t)
			tt.setupMocks(mockService)

			req := newActorRequest(t, http.MethodPost, "/api/v1/faulty-stock/repair-transfers/export/async", tt.body, actor)
			w := httptest.NewRecorder()

			handler.RequestExport(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusAccepted {
				var data map[string]string
				require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &data))
				assert.Equal(t, "task-123", data["taskId"])
			}
		})
	}
}

func TestReportHandler_RequestLedgerAudit(t *testing.T) {
	actor := reportActor()
	center := uuid.New()
	handler, mockService := newReportHandler(t)

	mockService.EXPECT().
		RequestLedgerAudit(gomock.Any(), actor, domain.AuditRequest{CenterID: &center}).
		Return("audit-1", nil)

	req := newActorRequest(t, http.MethodPost, "/api/v1/admin/ledger-audit", map[string]any{"centerId": center}, actor)
	w := httptest.NewRecorder()

	handler.RequestLedgerAudit(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "ledger audit queued", decodeEnvelope(t, w.Body.Bytes()).Message)
}
