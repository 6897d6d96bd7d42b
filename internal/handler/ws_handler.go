package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/limiter"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/resp"
)

// HandleWebSocket upgrades the request and subscribes it to the presence events of a room.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r) {
			logx.Ctx(r.Context()).Warn().Msg("WebSocket connection rejected: rate limit exceeded")
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		id := chi.URLParam(r, "id")

		found, err := deps.Rooms.Get(r.Context(), id)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrRoomNotFound, id))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Ctx(r.Context()).Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		logx.Ctx(r.Context()).Debug().Str("room_id", found.UUID).Msg("Presence subscriber connected")

		if err := deps.Presence.Serve(found.UUID, conn); err != nil {
			logx.Ctx(r.Context()).Warn().Err(err).Str("room_id", found.UUID).Msg("Presence subscription refused")
		}
	}
}
