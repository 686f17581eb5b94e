package orders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/api/middleware"
	"github.com/sweetorder/sweetorder-backend/api/responses"
	"github.com/sweetorder/sweetorder-backend/api/validators"
	internalorders "github.com/sweetorder/sweetorder-backend/internal/orders"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
)

// action runs one order endpoint for an authenticated caller and returns the
// payload plus the success status.
type action func(w http.ResponseWriter, r *http.Request, caller uuid.UUID) (any, int, error)

func handle(svc internalorders.Service, logg *logger.Logger, act action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		caller := middleware.CallerID(ctx)
		if caller == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		data, status, err := act(w, r, caller)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, data)
	}
}

// Create places an order for the caller. Totals are recomputed server-side.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, caller uuid.UUID) (any, int, error) {
		var in internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(w, r, &in); err != nil {
			return nil, 0, err
		}
		order, err := svc.CreateOrder(r.Context(), caller, in)
		return order, http.StatusCreated, err
	})
}

// List returns the caller's orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, caller uuid.UUID) (any, int, error) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			return nil, 0, err
		}
		page, err := svc.ListBuyerOrders(r.Context(), caller, params)
		return page, http.StatusOK, err
	})
}

// Detail is visible to the buyer and to the owner of the selling store.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, caller uuid.UUID) (any, int, error) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			return nil, 0, err
		}
		order, err := svc.GetOrder(r.Context(), caller, orderID)
		return order, http.StatusOK, err
	})
}

// UpdateStatus applies a seller-side status transition.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, caller uuid.UUID) (any, int, error) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			return nil, 0, err
		}
		var in internalorders.UpdateOrderStatusInput
		if err := validators.DecodeJSONBody(w, r, &in); err != nil {
			return nil, 0, err
		}
		order, err := svc.UpdateOrderStatus(r.Context(), caller, orderID, in.OrderStatus)
		return order, http.StatusOK, err
	})
}

// StoreOrders lists orders received by a store the caller owns.
func StoreOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return handle(svc, logg, func(w http.ResponseWriter, r *http.Request, caller uuid.UUID) (any, int, error) {
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			return nil, 0, err
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			return nil, 0, err
		}
		page, err := svc.ListStoreOrders(r.Context(), caller, storeID, params)
		return page, http.StatusOK, err
	})
}
