package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/api/middleware"
	"github.com/sweetorder/sweetorder-backend/api/responses"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
)

func requireCaller(r *http.Request) (uuid.UUID, error) {
	id := middleware.CallerID(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}

// respond writes data with status, or the error envelope when err is set.
func respond(w http.ResponseWriter, r *http.Request, logg *logger.Logger, status int, data any, err error) {
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, data)
}
