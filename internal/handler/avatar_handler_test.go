package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"mocrs/internal/app/user"
)

const oldAvatar = "avatars/alice/old.png"

func newAvatarEnv(t *testing.T) (*testEnv, *fakeStorage) {
	t.Helper()

	env := newTestEnv(t)
	store := newFakeStorage()
	env.deps.Storage = store

	seedAlice(t, env)
	store.put(oldAvatar, "image/png", 512)
	if err := env.users.SetAvatarKey(context.Background(), "alice", oldAvatar); err != nil {
		t.Fatalf("SetAvatarKey: %v", err)
	}
	return env, store
}

func avatarKeyOf(t *testing.T, env *testEnv, username string) string {
	t.Helper()

	u, err := env.users.Get(context.Background(), username)
	if err != nil {
		t.Fatalf("Get %s: %v", username, err)
	}
	return u.AvatarKey
}

func presignAvatar(t *testing.T, env *testEnv, token string) string {
	t.Helper()

	rec := env.do(http.MethodPost, "/api/users/alice/avatar/presign", token, `{"mimeType":"image/png","fileSize":1024}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("presign status=%d body=%s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec.Body.Bytes())
	key, _ := body["avatarKey"].(string)
	if !strings.HasPrefix(key, "avatars/alice/") || !strings.HasSuffix(key, ".png") {
		t.Fatalf("avatarKey=%q", key)
	}
	if body["presignedUrl"] != "https://bucket.test/upload/"+key {
		t.Fatalf("presignedUrl=%v", body["presignedUrl"])
	}
	return key
}

func TestAvatar_AbandonedUploadKeepsCurrentAvatar(t *testing.T) {
	env, store := newAvatarEnv(t)
	alice := env.token(t, "alice", false)

	presignAvatar(t, env, alice)

	if !store.has(oldAvatar) {
		t.Fatalf("current avatar deleted before any upload")
	}
	if got := avatarKeyOf(t, env, "alice"); got != oldAvatar {
		t.Fatalf("avatarKey=%q, want %q", got, oldAvatar)
	}

	rec := env.do(http.MethodGet, "/api/users/alice/avatar", alice, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if loc := rec.Header().Get("Location"); loc != "https://bucket.test/download/"+oldAvatar {
		t.Fatalf("Location=%q", loc)
	}
}

func TestAvatar_ConfirmReplacesAfterUpload(t *testing.T) {
	env, store := newAvatarEnv(t)
	alice := env.token(t, "alice", false)

	key := presignAvatar(t, env, alice)
	store.put(key, "image/png", 1024)

	rec := env.do(http.MethodPost, "/api/users/alice/avatar/confirm", alice, `{"avatarKey":"`+key+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status=%d body=%s", rec.Code, rec.Body)
	}
	if got := avatarKeyOf(t, env, "alice"); got != key {
		t.Fatalf("avatarKey=%q, want %q", got, key)
	}
	if store.has(oldAvatar) {
		t.Fatalf("replaced avatar still in bucket")
	}

	rec = env.do(http.MethodGet, "/api/users/alice/avatar", env.token(t, "bob", false), "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if loc := rec.Header().Get("Location"); loc != "https://bucket.test/download/"+key {
		t.Fatalf("Location=%q", loc)
	}
}

func TestAvatar_ConfirmWithoutUpload(t *testing.T) {
	env, store := newAvatarEnv(t)
	alice := env.token(t, "alice", false)

	key := presignAvatar(t, env, alice)

	rec := env.do(http.MethodPost, "/api/users/alice/avatar/confirm", alice, `{"avatarKey":"`+key+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	assertError(t, decodeBody(t, rec.Body.Bytes()), "Avatar has not been uploaded", 400)

	if got := avatarKeyOf(t, env, "alice"); got != oldAvatar {
		t.Fatalf("avatarKey=%q, want %q", got, oldAvatar)
	}
	if !store.has(oldAvatar) {
		t.Fatalf("current avatar deleted")
	}
}

func TestAvatar_ConfirmRejectsForeignOrOversizedObjects(t *testing.T) {
	env, store := newAvatarEnv(t)
	alice := env.token(t, "alice", false)

	store.put("avatars/bob/x.png", "image/png", 100)
	rec := env.do(http.MethodPost, "/api/users/alice/avatar/confirm", alice, `{"avatarKey":"avatars/bob/x.png"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign key status=%d", rec.Code)
	}
	assertError(t, decodeBody(t, rec.Body.Bytes()), "Invalid avatar", 400)

	store.put("avatars/alice/huge.png", "image/png", 3<<20)
	rec = env.do(http.MethodPost, "/api/users/alice/avatar/confirm", alice, `{"avatarKey":"avatars/alice/huge.png"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized status=%d", rec.Code)
	}

	if got := avatarKeyOf(t, env, "alice"); got != oldAvatar {
		t.Fatalf("avatarKey=%q, want %q", got, oldAvatar)
	}
}

func TestAvatar_ConfirmRequiresSelfOrAdmin(t *testing.T) {
	env, store := newAvatarEnv(t)

	store.put("avatars/alice/new.png", "image/png", 100)
	rec := env.do(http.MethodPost, "/api/users/alice/avatar/confirm", env.token(t, "bob", false), `{"avatarKey":"avatars/alice/new.png"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestDeleteUser_RemovesAvatarObject(t *testing.T) {
	env, store := newAvatarEnv(t)

	rec := env.do(http.MethodDelete, "/api/users/alice", env.token(t, "alice", false), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if store.has(oldAvatar) {
		t.Fatalf("avatar object left behind after account deletion")
	}
}

type brokenLookupUsers struct {
	UserStore
}

func (brokenLookupUsers) Get(context.Context, string) (*user.User, error) {
	return nil, errors.New("connection reset")
}

func TestAvatar_ConfirmStoreFailureKeepsObjects(t *testing.T) {
	env, store := newAvatarEnv(t)
	alice := env.token(t, "alice", false)

	key := presignAvatar(t, env, alice)
	store.put(key, "image/png", 1024)
	env.deps.Users = brokenLookupUsers{UserStore: env.users}

	rec := env.do(http.MethodPost, "/api/users/alice/avatar/confirm", alice, `{"avatarKey":"`+key+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	if !store.has(oldAvatar) || !store.has(key) {
		t.Fatalf("objects deleted after failed lookup")
	}
	if got := avatarKeyOf(t, env, "alice"); got != oldAvatar {
		t.Fatalf("avatarKey=%q, want %q", got, oldAvatar)
	}
}
