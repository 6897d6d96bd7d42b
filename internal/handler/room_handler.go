package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mocrs/internal/app/db"
	"mocrs/internal/app/room"
	"mocrs/internal/pkg/auth/guard"
	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/req"
	"mocrs/internal/pkg/resp"
)

type roomLister func(ctx context.Context) ([]room.Room, error)

// HandleListRooms answers with the result of list.
func HandleListRooms(list roomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := list(r.Context())
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, rooms)
	}
}

// HandleListRoomsByCreator lists the rooms of the user id in the path.
func HandleListRoomsByCreator(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID, err := strconv.ParseInt(chi.URLParam(r, "creatorId"), 10, 64)
		if err != nil || creatorID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		rooms, err := deps.Rooms.ListByCreator(r.Context(), creatorID)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, rooms)
	}
}

// HandleCreateRoom creates a room owned by the caller.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input room.NewRoom
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := input.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		creator := jwt.GetIdentity(r).Username()

		created, err := deps.Rooms.Create(r.Context(), input, creator)
		if err != nil {
			// The session outlived its account.
			respondStoreError(w, r, err, errs.NewError(errs.ErrUnauthorized))
			return
		}

		logx.Ctx(r.Context()).Info().Str("room_id", created.UUID).Str("creator", creator).Msg("Room created")
		resp.RespondCreated(w, r, created)
	}
}

// HandleGetRoom returns one room.
func HandleGetRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		found, err := deps.Rooms.Get(r.Context(), id)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrRoomNotFound, id))
			return
		}

		resp.RespondSuccess(w, r, found)
	}
}

// authorizeRoomOwner lets the room's creator and administrators through.
func authorizeRoomOwner(deps *AppDeps, r *http.Request, id string) *errs.CustomError {
	identity := jwt.GetIdentity(r)
	if identity.IsAdmin() {
		return nil
	}

	owner, err := deps.Rooms.Owner(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return errs.NewError(errs.ErrRoomNotFound, id)
		}
		logx.Ctx(r.Context()).Error().Err(err).Str("room_id", id).Msg("Room owner lookup failed")
		return errs.NewError(errs.ErrUnknown)
	}

	if owner != identity.Username() {
		deps.Metrics.GuardRejected(guard.NameRoomOwner)
		return errs.NewError(errs.ErrUnauthorized)
	}
	return nil
}

// HandleUpdateRoom applies a partial room update.
func HandleUpdateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if customErr := authorizeRoomOwner(deps, r, id); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var patch room.Patch
		if customErr := req.BindJSON(w, r, &patch); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := patch.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		updated, err := deps.Rooms.Update(r.Context(), id, patch.Fields())
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrRoomNotFound, id))
			return
		}

		resp.RespondSuccess(w, r, updated)
	}
}

// HandleDeleteRoom removes a room.
func HandleDeleteRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if customErr := authorizeRoomOwner(deps, r, id); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Rooms.Delete(r.Context(), id); err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrRoomNotFound, id))
			return
		}

		deps.Presence.Publish(id, 0)
		resp.RespondSuccess(w, r, map[string]any{"deleted": id})
	}
}

// HandleJoinRoom increments the participant count and publishes it.
func HandleJoinRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		joined, err := deps.Rooms.Join(r.Context(), id)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrRoomNotFound, id))
			return
		}

		deps.Presence.Publish(joined.UUID, joined.Participants)
		resp.RespondSuccess(w, r, joined)
	}
}

// HandleLeaveRoom decrements the participant count and publishes it.
func HandleLeaveRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		left, err := deps.Rooms.Leave(r.Context(), id)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrRoomEmpty, id))
			return
		}

		deps.Presence.Publish(left.UUID, left.Participants)
		resp.RespondNoContent(w)
	}
}
