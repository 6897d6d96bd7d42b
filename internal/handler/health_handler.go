package handler

import (
	"net/http"

	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/resp"
)

// HandleHealth reports liveness, and readiness of the database when a probe is configured.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.Ping(r.Context()); err != nil {
				logx.Ctx(r.Context()).Warn().Err(err).Msg("Database readiness probe failed")
				resp.RespondError(w, r, errs.NewError(errs.ErrDatabaseUnavailable))
				return
			}
		}

		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": logx.ServiceName,
		})
	}
}
