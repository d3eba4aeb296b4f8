package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/arrendamientos-api/internal/config"
	"github.com/sjperalta/arrendamientos-api/internal/jobs"
	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository/repotest"
	"github.com/sjperalta/arrendamientos-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiTest struct {
	t      *testing.T
	router *gin.Engine
	store  *repotest.Store
}

func newAPITest(t *testing.T, now time.Time) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repotest.NewStore()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{PriceLookbackMonths: 3}
	svcs := services.NewServices(store.Repositories(), worker, cfg, services.FixedClock{At: now}, nil)

	router := gin.New()
	NewHandlers(svcs).RegisterRoutes(router.Group("/api/v1"))
	return &apiTest{t: t, router: router, store: store}
}

func (a *apiTest) do(method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var payload map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	}
	return w, payload
}

func (a *apiTest) seedLease(fiscalCondition string) uint {
	landlordID := a.store.AddLandlord(models.Landlord{Name: "Don Ernesto", FiscalCondition: fiscalCondition})
	return a.store.AddLease(models.Lease{
		Type:            models.LeaseTypeFixed,
		Status:          models.LeaseStatusActive,
		StartDate:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		PaymentTerm:     models.PaymentTermMonthly,
		PriceSource:     models.PriceSourceBCR,
		AveragingPolicy: models.AveragingPriorMonthAll,
		Participations: []models.Participation{{
			LandlordID:         landlordID,
			HectaresAssigned:   decimal.NewFromInt(100),
			QuintalsPerHectare: decimal.NewFromInt(10),
		}},
	})
}

func TestHealth(t *testing.T) {
	api := newAPITest(t, time.Now())
	w, body := api.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPaymentLifecycle(t *testing.T) {
	api := newAPITest(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	api.store.SetSetting(models.SettingMinimumTaxableBase, "50000")
	leaseID := api.seedLease(models.FiscalConditionRegistered)

	w, body := api.do(http.MethodPost, fmt.Sprintf("/leases/%d/schedule", leaseID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payments := body["payments"].([]interface{})
	require.Len(t, payments, 3)
	first := payments[0].(map[string]interface{})
	paymentID := uint(first["id"].(float64))
	assert.Equal(t, "2024-03-10", first["due_date"])
	assert.Equal(t, "83.33", first["quintals"])

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/leases/%d/schedule", leaseID), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/invoice", paymentID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "invoice before price")

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/price", paymentID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "no quotes yet")

	w, _ = api.do(http.MethodPost, "/prices", `{"price": {"date": "2024-02-15", "source": "bcr", "price_per_ton": "250000"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/price", paymentID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	priced := body["payment"].(map[string]interface{})
	assert.Equal(t, "25000", priced["unit_price"])
	assert.Equal(t, "2083250", priced["amount"])

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/price", paymentID), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = api.do(http.MethodGet, fmt.Sprintf("/payments/%d/quotes", paymentID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["quotes"], 1)

	w, body = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/invoice", paymentID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoice := body["invoice"].(map[string]interface{})
	assert.Equal(t, models.InvoiceTypeA, invoice["type"])
	assert.Equal(t, "1961255", invoice["amount"])
	assert.Equal(t, "121995", invoice["retention_amount"])
	assert.Equal(t, "UN MILLÓN NOVECIENTOS SESENTA Y UN MIL DOSCIENTOS CINCUENTA Y CINCO PESOS CON 00/100", invoice["amount_in_words"])

	w, _ = api.do(http.MethodGet, fmt.Sprintf("/payments/%d/invoice", paymentID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/invoice", paymentID), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = api.do(http.MethodPost, fmt.Sprintf("/payments/%d/cancel", paymentID), "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = api.do(http.MethodGet, fmt.Sprintf("/leases/%d/payments?status=paid", leaseID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["payments"], 1)

	w, body = api.do(http.MethodPost, fmt.Sprintf("/leases/%d/cancel", leaseID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["payments_cancelled"])
}

func TestListAndSummarizePayments(t *testing.T) {
	api := newAPITest(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	leaseID := api.seedLease(models.FiscalConditionRegistered)
	w, _ := api.do(http.MethodPost, fmt.Sprintf("/leases/%d/schedule", leaseID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body := api.do(http.MethodGet, "/payments?due_month=2024-04", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	payments := body["payments"].([]interface{})
	require.Len(t, payments, 1)
	assert.Equal(t, "2024-04-10", payments[0].(map[string]interface{})["due_date"])

	w, body = api.do(http.MethodGet, "/payments?status=pending&per_page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["payments"], 2)
	assert.Equal(t, float64(3), body["pagination"].(map[string]interface{})["total"])

	w, _ = api.do(http.MethodGet, "/payments?due_month=marzo", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(http.MethodGet, "/payments/summary", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, "2024-03", summary["month"])
	assert.Equal(t, float64(1), summary["payments"])
	assert.Equal(t, "83.33", summary["quintals"])

	w, body = api.do(http.MethodGet, "/payments/summary?month=2024-05&status=pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["summary"].(map[string]interface{})["tenants"], 1)

	w, _ = api.do(http.MethodGet, "/payments/summary?status=pending,unpaid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFoundAndBadIDs(t *testing.T) {
	api := newAPITest(t, time.Now())

	w, _ := api.do(http.MethodGet, "/payments/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodGet, "/payments/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := api.do(http.MethodGet, "/payments/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, body["error"])

	w, _ = api.do(http.MethodPost, "/leases/42/schedule", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodGet, "/leases/42/payments", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePrice(t *testing.T) {
	api := newAPITest(t, time.Now())

	w, body := api.do(http.MethodPost, "/prices", `{"date": "2024-03-08", "source": "AGD", "price_per_ton": 251000.5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	price := body["price"].(map[string]interface{})
	assert.Equal(t, "2024-03-08", price["date"])
	assert.Equal(t, "251000.5", price["price_per_ton"])

	w, _ = api.do(http.MethodPost, "/prices", `{"date": "2024-03-08", "source": "AGD", "price_per_ton": 1}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/prices", `{"date": "08/03/2024", "source": "AGD", "price_per_ton": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/prices", `{"date": "2024-03-09", "source": "MATBA", "price_per_ton": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/prices", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(http.MethodGet, "/prices?source=agd", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["prices"], 1)
}

func TestSettings(t *testing.T) {
	api := newAPITest(t, time.Now())

	w, _ := api.do(http.MethodGet, "/settings/"+models.SettingMinimumTaxableBase, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodPut, "/settings/"+models.SettingMinimumTaxableBase, `{"value": "-10"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPut, "/settings/"+models.SettingMinimumTaxableBase, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPut, "/settings/"+models.SettingMinimumTaxableBase, `{"value": "67000"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := api.do(http.MethodGet, "/settings/"+models.SettingMinimumTaxableBase, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "67000", body["setting"].(map[string]interface{})["value"])

	w, body = api.do(http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["settings"], 1)
}

func TestJobs(t *testing.T) {
	api := newAPITest(t, time.Now())

	w, _ := api.do(http.MethodPost, "/jobs/weekly_digest/run", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := api.do(http.MethodPost, "/jobs/"+services.JobOverdueSweep+"/run", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, services.JobOverdueSweep, body["job"])

	w, body = api.do(http.MethodGet, "/jobs/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["jobs"], len(services.JobNames))
	assert.Contains(t, body, "last_runs")
	assert.Contains(t, body, "running")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("payment 1: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrSettingNotFound, http.StatusNotFound},
		{services.ErrInvalidSetting, http.StatusBadRequest},
		{services.ErrUnsupportedPolicy, http.StatusBadRequest},
		{services.ErrAlreadyScheduled, http.StatusConflict},
		{services.ErrAlreadyPriced, http.StatusConflict},
		{services.ErrAlreadyPaidOrCancelled, http.StatusConflict},
		{services.ErrInvalidState, http.StatusConflict},
		{services.ErrNoPriceData, http.StatusUnprocessableEntity},
		{services.ErrNotYetPriced, http.StatusUnprocessableEntity},
		{jobs.ErrJobRunning, http.StatusConflict},
		{jobs.ErrQueueFull, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}
