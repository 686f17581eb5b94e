package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/api/responses"
	"github.com/sweetorder/sweetorder-backend/api/validators"
	"github.com/sweetorder/sweetorder-backend/internal/likes"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
)

// likeParam maps each like target to the path parameter carrying its id.
var likeParam = map[enums.LikeTarget]string{
	enums.LikeTargetProduct: "productId",
	enums.LikeTargetStore:   "storeId",
}

// LikeAdd records the caller's like on the target named in the path.
func LikeAdd(svc likes.Service, kind enums.LikeTarget, logg *logger.Logger) http.HandlerFunc {
	return likeHandler(svc, kind, logg, http.StatusCreated, likes.Service.AddLike)
}

// LikeRemove deletes the caller's like on the target named in the path.
func LikeRemove(svc likes.Service, kind enums.LikeTarget, logg *logger.Logger) http.HandlerFunc {
	return likeHandler(svc, kind, logg, http.StatusOK, likes.Service.RemoveLike)
}

// LikeStatus reports whether the caller likes the target.
func LikeStatus(svc likes.Service, kind enums.LikeTarget, logg *logger.Logger) http.HandlerFunc {
	return likeHandler(svc, kind, logg, http.StatusOK, likes.Service.IsLiked)
}

type likeOp func(svc likes.Service, ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (likes.LikeState, error)

func likeHandler(svc likes.Service, kind enums.LikeTarget, logg *logger.Logger, status int, op likeOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "likes service unavailable"))
			return
		}

		userID, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := validators.ParseUUIDParam(r, likeParam[kind])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := op(svc, r.Context(), kind, userID, targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, status, state)
	}
}

// LikedProducts pages through the caller's liked products, newest like first.
func LikedProducts(svc likes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "likes service unavailable"))
			return
		}

		userID, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListLikedProducts(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// LikedStores pages through the caller's liked stores, newest like first.
func LikedStores(svc likes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "likes service unavailable"))
			return
		}

		userID, err := requireCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListLikedStores(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
