package handler

import (
	"errors"
	"net/http"

	"mocrs/internal/app/db"
	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/resp"
)

// respondStoreError translates a store error. notFound is used for db.ErrNotFound.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFound *errs.CustomError) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		resp.RespondError(w, r, notFound)
	case errors.Is(err, db.ErrNoUpdateData):
		resp.RespondError(w, r, errs.NewError(errs.ErrNoUpdateData))
	default:
		logx.Ctx(r.Context()).Error().Err(err).Msg("Store operation failed")
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
	}
}

// HandleNotFound answers unmatched routes with the standard error body.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
}

// HandleMethodNotAllowed answers a known route used with the wrong method.
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	resp.RespondError(w, r, errs.NewError(errs.ErrMethodNotAllowed))
}
