package controllers

import (
	"net/http"

	"github.com/sweetorder/sweetorder-backend/api/validators"
	"github.com/sweetorder/sweetorder-backend/internal/stores"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
)

// StoreCreate opens a store owned by the caller.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			respond(w, r, logg, 0, nil, unavailable("store"))
			return
		}
		userID, err := requireCaller(r)
		if err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		var in stores.CreateStoreInput
		if err := validators.DecodeJSONBody(w, r, &in); err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		store, err := svc.Create(r.Context(), userID, in)
		respond(w, r, logg, http.StatusCreated, store, err)
	}
}

// StoreDetail is public.
func StoreDetail(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			respond(w, r, logg, 0, nil, unavailable("store"))
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		store, err := svc.GetByID(r.Context(), storeID)
		respond(w, r, logg, http.StatusOK, store, err)
	}
}

// StoreUpdate patches a store the caller owns.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			respond(w, r, logg, 0, nil, unavailable("store"))
			return
		}
		userID, err := requireCaller(r)
		if err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		var in stores.UpdateStoreInput
		if err := validators.DecodeJSONBody(w, r, &in); err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		store, err := svc.Update(r.Context(), userID, storeID, in)
		respond(w, r, logg, http.StatusOK, store, err)
	}
}

// StoreListMine lists the caller's stores.
func StoreListMine(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			respond(w, r, logg, 0, nil, unavailable("store"))
			return
		}
		userID, err := requireCaller(r)
		if err != nil {
			respond(w, r, logg, 0, nil, err)
			return
		}
		list, err := svc.ListMine(r.Context(), userID)
		respond(w, r, logg, http.StatusOK, list, err)
	}
}
