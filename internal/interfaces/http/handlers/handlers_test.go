package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/interfaces/http/middleware"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.TenantKey, &entities.Tenant{ID: entities.DefaultTenantID, IsActive: true})
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "body: %s", w.Body.String())
	}
	return w, parsed
}

type queueSizerStub struct{ size int }

func (s queueSizerStub) Size() int { return s.size }

func TestHealthHandler(t *testing.T) {
	r := testRouter()
	r.GET("/health", NewHealthHandler(queueSizerStub{size: 7}).Health)

	w, body := doJSON(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, float64(7), body["monitorQueueSize"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	require.NoError(t, err)
}

func TestNetworkHandler_ListNetworks(t *testing.T) {
	r := testRouter()
	r.GET("/networks", NewNetworkHandler().ListNetworks)

	w, body := doJSON(t, r, http.MethodGet, "/networks", "")
	require.Equal(t, http.StatusOK, w.Code)

	networks := body["networks"].([]any)
	require.Len(t, networks, 3)

	first := networks[0].(map[string]any)
	require.Equal(t, "arbitrum", first["network"])
	require.Equal(t, true, first["recommended"])
	require.ElementsMatch(t, []any{"USDT", "USDC"}, first["tokens"].([]any))
}

func TestNetworkHandler_ValidateAddress(t *testing.T) {
	r := testRouter()
	r.POST("/validate-address", NewNetworkHandler().ValidateAddress)

	tests := []struct {
		name       string
		body       string
		status     int
		valid      bool
		normalized string
	}{
		{
			name:       "evm checksummed",
			body:       `{"network":"arbitrum","address":"0x52908400098527886E0F7030069857D2E4169EE7"}`,
			status:     http.StatusOK,
			valid:      true,
			normalized: "0x52908400098527886e0f7030069857d2e4169ee7",
		},
		{
			name:       "tron",
			body:       `{"network":"tron","address":"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"}`,
			status:     http.StatusOK,
			valid:      true,
			normalized: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		},
		{
			name:   "tron address on evm network",
			body:   `{"network":"ethereum","address":"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"}`,
			status: http.StatusOK,
			valid:  false,
		},
		{
			name:   "unknown network",
			body:   `{"network":"solana","address":"0x52908400098527886E0F7030069857D2E4169EE7"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing fields",
			body:   `{"network":"arbitrum"}`,
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, body := doJSON(t, r, http.MethodPost, "/validate-address", tc.body)
			require.Equal(t, tc.status, w.Code)
			if tc.status != http.StatusOK {
				return
			}
			require.Equal(t, tc.valid, body["valid"])
			if tc.valid {
				require.Equal(t, tc.normalized, body["normalized"])
			} else {
				require.NotContains(t, body, "normalized")
			}
		})
	}
}

type planServiceStub struct {
	createFn func(ctx context.Context, tenantID string, input entities.CreatePlanInput) (*entities.Plan, error)
	updateFn func(ctx context.Context, tenantID string, planID uuid.UUID, input entities.UpdatePlanInput) (*entities.Plan, error)
	listFn   func(ctx context.Context, tenantID string) ([]*entities.Plan, error)
}

func (s *planServiceStub) CreatePlan(ctx context.Context, tenantID string, input entities.CreatePlanInput) (*entities.Plan, error) {
	return s.createFn(ctx, tenantID, input)
}

func (s *planServiceStub) UpdatePlan(ctx context.Context, tenantID string, planID uuid.UUID, input entities.UpdatePlanInput) (*entities.Plan, error) {
	return s.updateFn(ctx, tenantID, planID, input)
}

func (s *planServiceStub) ListPlans(ctx context.Context, tenantID string) ([]*entities.Plan, error) {
	return s.listFn(ctx, tenantID)
}

func TestPlanHandler_CreatePlan(t *testing.T) {
	var gotTenant string
	stub := &planServiceStub{
		createFn: func(_ context.Context, tenantID string, input entities.CreatePlanInput) (*entities.Plan, error) {
			gotTenant = tenantID
			return &entities.Plan{ID: uuid.New(), TenantID: tenantID, PlanKey: input.PlanKey, Name: input.Name}, nil
		},
	}
	r := testRouter()
	r.POST("/plans", NewPlanHandler(stub).CreatePlan)

	w, body := doJSON(t, r, http.MethodPost, "/plans",
		`{"planKey":"pro-monthly","name":"Pro","price":"19.99","currency":"USDC","periodDays":30}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, entities.DefaultTenantID, gotTenant)
	require.Equal(t, "pro-monthly", body["planKey"])
}

func TestPlanHandler_CreatePlan_MissingFields(t *testing.T) {
	stub := &planServiceStub{
		createFn: func(context.Context, string, entities.CreatePlanInput) (*entities.Plan, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	r := testRouter()
	r.POST("/plans", NewPlanHandler(stub).CreatePlan)

	w, body := doJSON(t, r, http.MethodPost, "/plans", `{"planKey":"pro-monthly"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, domainerrors.CodeValidation, body["error"])
}

func TestPlanHandler_CreatePlan_DuplicateKey(t *testing.T) {
	stub := &planServiceStub{
		createFn: func(context.Context, string, entities.CreatePlanInput) (*entities.Plan, error) {
			return nil, domainerrors.Conflict(domainerrors.CodeInvalidPlan, "plan key already exists")
		},
	}
	r := testRouter()
	r.POST("/plans", NewPlanHandler(stub).CreatePlan)

	w, body := doJSON(t, r, http.MethodPost, "/plans",
		`{"planKey":"pro-monthly","name":"Pro","price":"19.99","currency":"USDC"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, domainerrors.CodeInvalidPlan, body["error"])
}

func TestPlanHandler_UpdatePlan_InvalidID(t *testing.T) {
	r := testRouter()
	r.PATCH("/plans/:id", NewPlanHandler(&planServiceStub{}).UpdatePlan)

	w, body := doJSON(t, r, http.MethodPatch, "/plans/not-a-uuid", `{"name":"Pro+"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, domainerrors.CodeInvalidPlan, body["error"])
}

func TestPlanHandler_ListPlans(t *testing.T) {
	stub := &planServiceStub{
		listFn: func(context.Context, string) ([]*entities.Plan, error) {
			return []*entities.Plan{{PlanKey: "pro-monthly"}, {PlanKey: "pro-lifetime"}}, nil
		},
	}
	r := testRouter()
	r.GET("/plans", NewPlanHandler(stub).ListPlans)

	w, body := doJSON(t, r, http.MethodGet, "/plans", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body["plans"].([]any), 2)
}

type paymentServiceStub struct {
	initiateFn func(ctx context.Context, tenantID string, input entities.InitiatePaymentInput) (*entities.Placement, error)
	confirmFn  func(ctx context.Context, tenantID string, paymentID uuid.UUID) error
	statusFn   func(ctx context.Context, tenantID string, paymentID uuid.UUID) (*entities.PaymentStatusView, error)
	cancelFn   func(ctx context.Context, tenantID string, paymentID uuid.UUID) error
	historyFn  func(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error)
}

func (s *paymentServiceStub) InitiatePayment(ctx context.Context, tenantID string, input entities.InitiatePaymentInput) (*entities.Placement, error) {
	return s.initiateFn(ctx, tenantID, input)
}

func (s *paymentServiceStub) ConfirmPaymentSent(ctx context.Context, tenantID string, paymentID uuid.UUID) error {
	return s.confirmFn(ctx, tenantID, paymentID)
}

func (s *paymentServiceStub) GetPaymentStatus(ctx context.Context, tenantID string, paymentID uuid.UUID) (*entities.PaymentStatusView, error) {
	return s.statusFn(ctx, tenantID, paymentID)
}

func (s *paymentServiceStub) CancelPayment(ctx context.Context, tenantID string, paymentID uuid.UUID) error {
	return s.cancelFn(ctx, tenantID, paymentID)
}

func (s *paymentServiceStub) GetPaymentHistory(ctx context.Context, tenantID, externalUserID string, limit int) ([]*entities.Payment, error) {
	return s.historyFn(ctx, tenantID, externalUserID, limit)
}

func TestPaymentHandler_InitiatePayment(t *testing.T) {
	paymentID := uuid.New()
	stub := &paymentServiceStub{
		initiateFn: func(_ context.Context, _ string, input entities.InitiatePaymentInput) (*entities.Placement, error) {
			require.Equal(t, "user-1", input.ExternalUserID)
			return &entities.Placement{
				PaymentID:       paymentID,
				ReceiverAddress: "0x1111111111111111111111111111111111111111",
				Amount:          "19.99",
				Token:           entities.TokenUSDC,
				Network:         entities.NetworkArbitrum,
				ExpiresIn:       1800,
			}, nil
		},
	}
	r := testRouter()
	r.POST("/payments", NewPaymentHandler(stub).InitiatePayment)

	w, body := doJSON(t, r, http.MethodPost, "/payments",
		`{"externalUserId":"user-1","planId":"`+uuid.NewString()+`","network":"arbitrum","token":"USDC","senderAddress":"0x52908400098527886E0F7030069857D2E4169EE7"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, paymentID.String(), body["paymentId"])
	require.Equal(t, float64(1800), body["expiresIn"])
}

func TestPaymentHandler_InitiatePayment_PendingExists(t *testing.T) {
	stub := &paymentServiceStub{
		initiateFn: func(context.Context, string, entities.InitiatePaymentInput) (*entities.Placement, error) {
			return nil, domainerrors.Conflict(domainerrors.CodePendingExists, "a pending payment already exists")
		},
	}
	r := testRouter()
	r.POST("/payments", NewPaymentHandler(stub).InitiatePayment)

	w, body := doJSON(t, r, http.MethodPost, "/payments",
		`{"externalUserId":"user-1","planId":"`+uuid.NewString()+`","network":"arbitrum","token":"USDC","senderAddress":"0x52908400098527886E0F7030069857D2E4169EE7"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, domainerrors.CodePendingExists, body["error"])
}

func TestPaymentHandler_ConfirmPaymentSent(t *testing.T) {
	paymentID := uuid.New()
	var gotID uuid.UUID
	stub := &paymentServiceStub{
		confirmFn: func(_ context.Context, _ string, id uuid.UUID) error {
			gotID = id
			return nil
		},
	}
	r := testRouter()
	r.POST("/payments/:id/confirm", NewPaymentHandler(stub).ConfirmPaymentSent)

	w, body := doJSON(t, r, http.MethodPost, "/payments/"+paymentID.String()+"/confirm", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, paymentID, gotID)
	require.Equal(t, string(entities.PaymentStatusAwaitingConfirmation), body["status"])
}

func TestPaymentHandler_ConfirmPaymentSent_InvalidID(t *testing.T) {
	r := testRouter()
	r.POST("/payments/:id/confirm", NewPaymentHandler(&paymentServiceStub{}).ConfirmPaymentSent)

	w, body := doJSON(t, r, http.MethodPost, "/payments/xyz/confirm", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, domainerrors.CodeValidation, body["error"])
}

func TestPaymentHandler_GetPaymentStatus_NotFound(t *testing.T) {
	stub := &paymentServiceStub{
		statusFn: func(context.Context, string, uuid.UUID) (*entities.PaymentStatusView, error) {
			return nil, domainerrors.NotFound("payment not found")
		},
	}
	r := testRouter()
	r.GET("/payments/:id/status", NewPaymentHandler(stub).GetPaymentStatus)

	w, body := doJSON(t, r, http.MethodGet, "/payments/"+uuid.NewString()+"/status", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, domainerrors.CodeNotFound, body["error"])
}

func TestPaymentHandler_CancelPayment_NotCancellable(t *testing.T) {
	stub := &paymentServiceStub{
		cancelFn: func(context.Context, string, uuid.UUID) error {
			return domainerrors.Conflict(domainerrors.CodeCannotCancel, "only pending payments can be cancelled")
		},
	}
	r := testRouter()
	r.DELETE("/payments/:id", NewPaymentHandler(stub).CancelPayment)

	w, body := doJSON(t, r, http.MethodDelete, "/payments/"+uuid.NewString(), "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, domainerrors.CodeCannotCancel, body["error"])
}

func TestPaymentHandler_GetPaymentHistory(t *testing.T) {
	var gotUser string
	var gotLimit int
	stub := &paymentServiceStub{
		historyFn: func(_ context.Context, _ string, userID string, limit int) ([]*entities.Payment, error) {
			gotUser = userID
			gotLimit = limit
			return []*entities.Payment{{ExternalUserID: userID}}, nil
		},
	}
	r := testRouter()
	r.GET("/payments/history", NewPaymentHandler(stub).GetPaymentHistory)

	w, body := doJSON(t, r, http.MethodGet, "/payments/history?userId=user-1&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", gotUser)
	require.Equal(t, 10, gotLimit)
	require.Len(t, body["payments"].([]any), 1)
}

func TestPaymentHandler_GetPaymentHistory_MissingUser(t *testing.T) {
	r := testRouter()
	r.GET("/payments/history", NewPaymentHandler(&paymentServiceStub{}).GetPaymentHistory)

	w, body := doJSON(t, r, http.MethodGet, "/payments/history", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, domainerrors.CodeValidation, body["error"])
}

type subscriptionServiceStub struct {
	currentFn  func(ctx context.Context, tenantID, externalUserID string) (*entities.SubscriptionView, error)
	isActiveFn func(ctx context.Context, tenantID, externalUserID string) (bool, error)
	historyFn  func(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error)
}

func (s *subscriptionServiceStub) Current(ctx context.Context, tenantID, externalUserID string) (*entities.SubscriptionView, error) {
	return s.currentFn(ctx, tenantID, externalUserID)
}

func (s *subscriptionServiceStub) IsActive(ctx context.Context, tenantID, externalUserID string) (bool, error) {
	return s.isActiveFn(ctx, tenantID, externalUserID)
}

func (s *subscriptionServiceStub) History(ctx context.Context, tenantID, externalUserID string) ([]*entities.Subscription, error) {
	return s.historyFn(ctx, tenantID, externalUserID)
}

func TestSubscriptionHandler_Current(t *testing.T) {
	days := 11
	stub := &subscriptionServiceStub{
		currentFn: func(_ context.Context, _ string, userID string) (*entities.SubscriptionView, error) {
			return &entities.SubscriptionView{
				Subscription:  entities.Subscription{ExternalUserID: userID, Status: entities.SubscriptionStatusActive},
				DaysRemaining: &days,
			}, nil
		},
	}
	r := testRouter()
	r.GET("/subscriptions/current", NewSubscriptionHandler(stub).Current)

	w, body := doJSON(t, r, http.MethodGet, "/subscriptions/current?userId=user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "active", body["status"])
	require.Equal(t, float64(11), body["daysRemaining"])
}

func TestSubscriptionHandler_Current_NoSubscription(t *testing.T) {
	stub := &subscriptionServiceStub{
		currentFn: func(context.Context, string, string) (*entities.SubscriptionView, error) {
			return nil, domainerrors.ErrNotFound
		},
	}
	r := testRouter()
	r.GET("/subscriptions/current", NewSubscriptionHandler(stub).Current)

	w, body := doJSON(t, r, http.MethodGet, "/subscriptions/current?userId=user-1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, domainerrors.CodeNotFound, body["error"])
}

func TestSubscriptionHandler_Active(t *testing.T) {
	stub := &subscriptionServiceStub{
		isActiveFn: func(context.Context, string, string) (bool, error) { return true, nil },
	}
	r := testRouter()
	r.GET("/subscriptions/active", NewSubscriptionHandler(stub).Active)

	w, body := doJSON(t, r, http.MethodGet, "/subscriptions/active?userId=user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["active"])
}

func TestSubscriptionHandler_MissingUser(t *testing.T) {
	r := testRouter()
	h := NewSubscriptionHandler(&subscriptionServiceStub{})
	r.GET("/subscriptions/current", h.Current)
	r.GET("/subscriptions/active", h.Active)
	r.GET("/subscriptions/history", h.History)

	for _, path := range []string{"/subscriptions/current", "/subscriptions/active", "/subscriptions/history"} {
		w, body := doJSON(t, r, http.MethodGet, path, "")
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		require.Equal(t, domainerrors.CodeValidation, body["error"], path)
	}
}

type ofacServiceStub struct {
	checkFn  func(ctx context.Context, addr string) (*entities.OfacCheckResult, error)
	statusFn func(ctx context.Context) (*entities.OfacStatus, error)
	updateFn func(ctx context.Context) (*entities.OfacUpdateLog, error)
}

func (s *ofacServiceStub) CheckAddress(ctx context.Context, addr string) (*entities.OfacCheckResult, error) {
	return s.checkFn(ctx, addr)
}

func (s *ofacServiceStub) Status(ctx context.Context) (*entities.OfacStatus, error) {
	return s.statusFn(ctx)
}

func (s *ofacServiceStub) UpdateSanctionsList(ctx context.Context) (*entities.OfacUpdateLog, error) {
	return s.updateFn(ctx)
}

func TestOfacHandler_Check(t *testing.T) {
	var gotAddr string
	stub := &ofacServiceStub{
		checkFn: func(_ context.Context, addr string) (*entities.OfacCheckResult, error) {
			gotAddr = addr
			return &entities.OfacCheckResult{IsSanctioned: true, CheckedAt: time.Now()}, nil
		},
	}
	r := testRouter()
	r.GET("/ofac/check/:address", NewOfacHandler(stub).Check)

	w, body := doJSON(t, r, http.MethodGet, "/ofac/check/0xDEadbeef00000000000000000000000000000001", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0xDEadbeef00000000000000000000000000000001", gotAddr)
	require.Equal(t, true, body["isSanctioned"])
}

func TestOfacHandler_Status(t *testing.T) {
	stub := &ofacServiceStub{
		statusFn: func(context.Context) (*entities.OfacStatus, error) {
			return &entities.OfacStatus{
				TotalAddresses:    1234,
				LastUpdateSuccess: true,
				AddressTypes:      map[string]int{"ethereum": 1000, "tron": 234},
			}, nil
		},
	}
	r := testRouter()
	r.GET("/ofac/status", NewOfacHandler(stub).Status)

	w, body := doJSON(t, r, http.MethodGet, "/ofac/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1234), body["totalAddresses"])
}

func TestOfacHandler_Update_InProgress(t *testing.T) {
	stub := &ofacServiceStub{
		updateFn: func(context.Context) (*entities.OfacUpdateLog, error) {
			return nil, domainerrors.ErrUpdateInProgress
		},
	}
	r := testRouter()
	r.POST("/ofac/update", NewOfacHandler(stub).Update)

	w, body := doJSON(t, r, http.MethodPost, "/ofac/update", "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, domainerrors.CodeRateLimited, body["error"])
}

func TestOfacHandler_Update(t *testing.T) {
	stub := &ofacServiceStub{
		updateFn: func(context.Context) (*entities.OfacUpdateLog, error) {
			return &entities.OfacUpdateLog{TotalAddresses: 42, NewAddresses: 2, Success: true}, nil
		},
	}
	r := testRouter()
	r.POST("/ofac/update", NewOfacHandler(stub).Update)

	w, body := doJSON(t, r, http.MethodPost, "/ofac/update", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(42), body["totalAddresses"])
}
