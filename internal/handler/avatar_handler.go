package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mocrs/internal/app/storage"
	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/req"
	"mocrs/internal/pkg/resp"
)

type presignAvatarInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatar hands out an upload URL for a new avatar. The user record and the
// current avatar are left untouched until the upload is confirmed.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		username := chi.URLParam(r, "username")

		var input presignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateAvatar(input.MimeType, input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := storage.NewAvatarKey(username, input.MimeType)

		url, err := deps.Storage.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, storage.PresignedURLDuration)
		if err != nil {
			logx.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("Failed to presign avatar upload")
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"avatarKey":    key,
		})
	}
}

type confirmAvatarInput struct {
	AvatarKey string `json:"avatarKey"`
}

// HandleConfirmAvatar makes an uploaded object the user's avatar once it exists in the
// bucket, then removes the object it replaces.
func HandleConfirmAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		username := chi.URLParam(r, "username")

		var input confirmAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !storage.OwnsAvatarKey(username, input.AvatarKey) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatar))
			return
		}

		info, err := deps.Storage.Stat(r.Context(), input.AvatarKey)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrAvatarNotUploaded))
				return
			}
			logx.Ctx(r.Context()).Error().Err(err).Str("key", input.AvatarKey).Msg("Failed to stat uploaded avatar")
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}
		if customErr := storage.ValidateAvatar(info.ContentType, info.ContentLength); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Users.Get(r.Context(), username)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUserNotFound, username))
			return
		}
		previous := u.AvatarKey

		if err := deps.Users.SetAvatarKey(r.Context(), username, input.AvatarKey); err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUserNotFound, username))
			return
		}

		if previous != "" && previous != input.AvatarKey {
			deleteAvatar(r, deps.Storage, username, previous)
		}

		logx.Ctx(r.Context()).Info().Str("username", username).Str("key", input.AvatarKey).Msg("Avatar updated")
		resp.RespondSuccess(w, r, map[string]any{"avatarKey": input.AvatarKey})
	}
}

// deleteAvatar removes key from the bucket when it belongs to username. Failures are logged only.
func deleteAvatar(r *http.Request, store storage.Service, username, key string) {
	if !storage.OwnsAvatarKey(username, key) {
		return
	}
	if err := store.Delete(r.Context(), key); err != nil {
		logx.Ctx(r.Context()).Warn().Err(err).Str("key", key).Msg("Failed to delete avatar object")
	}
}

// HandleGetAvatar redirects to a short-lived download URL of the user's avatar.
func HandleGetAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		username := chi.URLParam(r, "username")

		u, err := deps.Users.Get(r.Context(), username)
		if err != nil {
			respondStoreError(w, r, err, errs.NewError(errs.ErrUserNotFound, username))
			return
		}
		if u.AvatarKey == "" || !storage.OwnsAvatarKey(username, u.AvatarKey) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
			return
		}

		if _, err := deps.Storage.Stat(r.Context(), u.AvatarKey); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), u.AvatarKey, storage.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
