package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/telemetry"
	"github.com/sweetorder/sweetorder-backend/pkg/types"
)

// now is swapped in tests.
var now = time.Now

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusCreated, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.Envelope{
		Success:    true,
		Data:       data,
		Timestamp:  timestamp(),
		StatusCode: status,
	})
}

// WriteError renders err in the failure envelope. Typed errors keep their message;
// anything else becomes an opaque internal error. Server-side failures are logged
// with the full chain and reported to the hub bound to ctx.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if typed.Code() != pkgerrors.CodeInternal && typed.Code() != pkgerrors.CodeDependency {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: msg,
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			apiErr.Details = details
		}
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["status"] = meta.HTTPStatus
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	if meta.HTTPStatus >= http.StatusInternalServerError {
		telemetry.CaptureError(ctx, err)
	}

	writeJSON(w, meta.HTTPStatus, types.Envelope{
		Success:    false,
		Data:       apiErr,
		Timestamp:  timestamp(),
		StatusCode: meta.HTTPStatus,
	})
}

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
