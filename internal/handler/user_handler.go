package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mocrs/internal/app/db"
	"mocrs/internal/app/user"
	"mocrs/internal/pkg/auth/guard"
	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/auth/password"
	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/req"
	"mocrs/internal/pkg/resp"
)

// HandleCreateUser lets an administrator create an account, optionally another administrator.
func HandleCreateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input user.NewUser
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		createUser(deps, w, r, input)
	}
}

// HandleListUsers returns every account ordered by username.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Users.List(r.Context())
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"users": users})
	}
}

// HandleGetUser returns one account with the rooms it created.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		u, err := deps.Users.Get(r.Context(), username)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUserNotFound, username))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": u})
	}
}

// HandleUpdateUser applies a partial update. Only administrators may change isAdmin.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		var patch user.Patch
		if customErr := req.BindJSON(w, r, &patch); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if patch.IsAdmin != nil && !guard.Admin(jwt.GetIdentity(r)) {
			deps.Metrics.GuardRejected(guard.NameAdmin)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if customErr := patch.Validate(); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fields := patch.Fields()
		if len(fields) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrNoUpdateData))
			return
		}

		if patch.Password != nil {
			hash, err := password.Hash(*patch.Password, deps.Config.BcryptCost)
			if err != nil {
				if password.IsTooLong(err) {
					resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
					return
				}
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
				return
			}
			fields["password"] = hash
		}

		u, err := deps.Users.Update(r.Context(), username, fields)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUserNotFound, username))
			return
		}

		logx.Ctx(r.Context()).Info().Str("username", username).Int("fields", len(fields)).Msg("User updated")
		resp.RespondSuccess(w, r, map[string]any{"user": u})
	}
}

// HandleDeleteUser removes an account, the rooms it created and, best-effort, its avatar object.
func HandleDeleteUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		avatarKey := ""
		if deps.Storage != nil {
			u, err := deps.Users.Get(r.Context(), username)
			switch {
			case err == nil:
				avatarKey = u.AvatarKey
			case !errors.Is(err, db.ErrNotFound):
				logx.Ctx(r.Context()).Warn().Err(err).Str("username", username).Msg("Avatar lookup before delete failed")
			}
		}

		if err := deps.Users.Delete(r.Context(), username); err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUserNotFound, username))
			return
		}

		if avatarKey != "" {
			deleteAvatar(r, deps.Storage, username, avatarKey)
		}

		logx.Ctx(r.Context()).Info().Str("username", username).Msg("User deleted")
		resp.RespondSuccess(w, r, map[string]any{"deleted": username})
	}
}
