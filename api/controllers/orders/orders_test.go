package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/api/middleware"
	internalorders "github.com/sweetorder/sweetorder-backend/internal/orders"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

type stubOrderService struct {
	createInput  internalorders.CreateOrderInput
	createResult *internalorders.CreateOrderResult
	statusArg    string
	storeID      uuid.UUID
	params       pagination.Params
	err          error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
	s.createInput = input
	return s.createResult, s.err
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, callerID, orderID uuid.UUID, status string) (*internalorders.UpdateOrderStatusResult, error) {
	s.statusArg = status
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.UpdateOrderStatusResult{ID: orderID}, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.OrderDTO{ID: orderID, UserID: callerID}, nil
}

func (s *stubOrderService) ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[internalorders.OrderDTO], error) {
	s.params = params
	return pagination.Page[internalorders.OrderDTO]{Items: []internalorders.OrderDTO{}}, s.err
}

func (s *stubOrderService) ListStoreOrders(ctx context.Context, callerID, storeID uuid.UUID, params pagination.Params) (pagination.Page[internalorders.OrderDTO], error) {
	s.storeID = storeID
	s.params = params
	return pagination.Page[internalorders.OrderDTO]{Items: []internalorders.OrderDTO{}}, s.err
}

func newRouter(svc internalorders.Service, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/orders", Create(svc, nil))
	r.Get("/orders", List(svc, nil))
	r.Get("/orders/{orderId}", Detail(svc, nil))
	r.Patch("/seller/orders/{orderId}/status", UpdateStatus(svc, nil))
	r.Get("/seller/stores/{storeId}/orders", StoreOrders(svc, nil))
	return r
}

func decodeEnvelope(t *testing.T, body []byte, dest any) bool {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if dest != nil {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return envelope.Success
}

const validOrderBody = `{
	"productId": "8a1c6f2e-3d4b-4c5a-9e6f-7a8b9c0d1e2f",
	"items": [{
		"sizeOptionId": "1b2c3d4e-5f60-4718-8293-a4b5c6d7e8f9",
		"flavorOptionId": "2c3d4e5f-6071-4829-93a4-b5c6d7e8f901",
		"quantity": 2,
		"pickupDate": "2026-11-01T10:00:00Z"
	}],
	"totalQuantity": 2,
	"totalPrice": 62000,
	"pickup": {"address": "Seoul Mapo-gu 1"}
}`

func TestCreateReturnsCreated(t *testing.T) {
	svc := &stubOrderService{createResult: &internalorders.CreateOrderResult{
		ID:          uuid.New(),
		OrderNumber: "20261018-0001",
		OrderStatus: enums.OrderStatusPending,
		TotalPrice:  62000,
	}}
	resp := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var result internalorders.CreateOrderResult
	if !decodeEnvelope(t, resp.Body.Bytes(), &result) {
		t.Fatal("expected success envelope")
	}
	if result.OrderNumber != "20261018-0001" {
		t.Fatalf("unexpected order number %s", result.OrderNumber)
	}
	if len(svc.createInput.Items) != 1 || svc.createInput.Items[0].Quantity != 2 {
		t.Fatalf("unexpected decoded input %+v", svc.createInput)
	}
}

func TestCreateRejectsInvalidBody(t *testing.T) {
	svc := &stubOrderService{}
	resp := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"productId":"8a1c6f2e-3d4b-4c5a-9e6f-7a8b9c0d1e2f","items":[]}`)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateRejectsOutOfRangeQuantities(t *testing.T) {
	item := func(qty string) string {
		return `{"sizeOptionId":"1b2c3d4e-5f60-4718-8293-a4b5c6d7e8f9","flavorOptionId":"2c3d4e5f-6071-4829-93a4-b5c6d7e8f901","quantity":` + qty + `,"pickupDate":"2026-11-01T10:00:00Z"}`
	}
	body := func(items ...string) string {
		return `{"productId":"8a1c6f2e-3d4b-4c5a-9e6f-7a8b9c0d1e2f","items":[` + strings.Join(items, ",") +
			`],"totalQuantity":1,"totalPrice":30000,"pickup":{"address":"Seoul Mapo-gu 1"}}`
	}
	tooMany := make([]string, internalorders.MaxOrderItems+1)
	for i := range tooMany {
		tooMany[i] = item("1")
	}

	cases := map[string]struct {
		body   string
		field  string
		detail string
	}{
		"wrapping quantity":  {body(item("9223372036854775807"), item("9223372036854775807"), item("3")), "items[0].quantity", "must be at most 100"},
		"quantity above cap": {body(item("101")), "items[0].quantity", "must be at most 100"},
		"too many items":     {body(tooMany...), "items", "must be at most 20"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubOrderService{}
			resp := httptest.NewRecorder()
			newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body)))

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
			}
			var apiErr struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			}
			decodeEnvelope(t, resp.Body.Bytes(), &apiErr)
			if apiErr.Code != string(pkgerrors.CodeValidation) {
				t.Fatalf("unexpected code %s", apiErr.Code)
			}
			if apiErr.Details[tc.field] != tc.detail {
				t.Fatalf("expected %s %q, got %v", tc.field, tc.detail, apiErr.Details)
			}
			if svc.createInput.Items != nil {
				t.Fatal("service must not be called for rejected input")
			}
		})
	}
}

func TestCreateRequiresCaller(t *testing.T) {
	resp := httptest.NewRecorder()
	newRouter(&stubOrderService{}, uuid.Nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCreateSurfacesConflict(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")}
	resp := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if decodeEnvelope(t, resp.Body.Bytes(), &apiErr) {
		t.Fatal("expected failure envelope")
	}
	if apiErr.Code != string(pkgerrors.CodeConflict) || apiErr.Message != "insufficient stock" {
		t.Fatalf("unexpected error payload %+v", apiErr)
	}
}

func TestUpdateStatusPassesRequestedStatus(t *testing.T) {
	svc := &stubOrderService{}
	orderID := uuid.New()
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/seller/orders/"+orderID.String()+"/status", strings.NewReader(`{"orderStatus":"CONFIRMED"}`))
	newRouter(svc, uuid.New()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.statusArg != "CONFIRMED" {
		t.Fatalf("expected CONFIRMED got %s", svc.statusArg)
	}
	var result internalorders.UpdateOrderStatusResult
	decodeEnvelope(t, resp.Body.Bytes(), &result)
	if result.ID != orderID {
		t.Fatalf("expected id %s got %s", orderID, result.ID)
	}
}

func TestUpdateStatusRejectsBadOrderID(t *testing.T) {
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/seller/orders/not-a-uuid/status", strings.NewReader(`{"orderStatus":"CONFIRMED"}`))
	newRouter(&stubOrderService{}, uuid.New()).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateStatusForbidden(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeForbidden, "not store owner")}
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/seller/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"orderStatus":"CONFIRMED"}`))
	newRouter(svc, uuid.New()).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestListParsesPagination(t *testing.T) {
	svc := &stubOrderService{}
	resp := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/orders?limit=5&cursor=abc", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.params.Limit != 5 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}
}

func TestListRejectsLimitOutOfRange(t *testing.T) {
	resp := httptest.NewRecorder()
	newRouter(&stubOrderService{}, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/orders?limit=1000", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStoreOrdersUsesPathStore(t *testing.T) {
	svc := &stubOrderService{}
	storeID := uuid.New()
	resp := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/seller/stores/"+storeID.String()+"/orders", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.storeID != storeID {
		t.Fatalf("expected store %s got %s", storeID, svc.storeID)
	}
	if svc.params.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit got %d", svc.params.Limit)
	}
}

func TestDetailNotFound(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	resp := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
