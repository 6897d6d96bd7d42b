package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"mocrs/internal/app/db"
	"mocrs/internal/app/room"
	"mocrs/internal/app/storage"
	"mocrs/internal/app/user"
	"mocrs/internal/configs"
	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/auth/meeting"
	"mocrs/internal/pkg/auth/password"
	"mocrs/internal/pkg/metrics"
)

const testSecret = "handler-test-secret"

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*user.Credentials
	rooms  *fakeRooms
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*user.Credentials)}
}

func (f *fakeUsers) add(t *testing.T, in user.NewUser) *user.User {
	t.Helper()

	hash, err := password.Hash(in.Password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := f.Create(context.Background(), in, hash)
	if err != nil {
		t.Fatalf("create %s: %v", in.Username, err)
	}
	return u
}

func (f *fakeUsers) GetCredentials(_ context.Context, username string) (*user.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.users[username]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, in user.NewUser, hash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[in.Username]; ok {
		return nil, db.ErrDuplicate
	}
	f.nextID++
	c := &user.Credentials{
		User: user.User{
			ID:        f.nextID,
			Username:  in.Username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			IsAdmin:   in.IsAdmin,
		},
		PasswordHash: hash,
	}
	f.users[in.Username] = c
	u := c.User
	return &u, nil
}

func (f *fakeUsers) List(context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]user.User, 0, len(f.users))
	for _, c := range f.users {
		out = append(out, c.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUsers) Get(ctx context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	c, ok := f.users[username]
	f.mu.Unlock()
	if !ok {
		return nil, db.ErrNotFound
	}

	u := c.User
	if f.rooms != nil {
		u.Rooms, _ = f.rooms.ListByCreator(ctx, u.ID)
	}
	return &u, nil
}

func (f *fakeUsers) Update(_ context.Context, username string, fields map[string]any) (*user.User, error) {
	if len(fields) == 0 {
		return nil, db.ErrNoUpdateData
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.users[username]
	if !ok {
		return nil, db.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "firstName":
			c.FirstName = v.(string)
		case "lastName":
			c.LastName = v.(string)
		case "email":
			c.Email = v.(string)
		case "isAdmin":
			c.IsAdmin = v.(bool)
		case "password":
			c.PasswordHash = v.(string)
		case "avatarKey":
			c.AvatarKey = v.(string)
		}
	}
	u := c.User
	return &u, nil
}

func (f *fakeUsers) SetAvatarKey(ctx context.Context, username, key string) error {
	_, err := f.Update(ctx, username, map[string]any{"avatarKey": key})
	return err
}

func (f *fakeUsers) Delete(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; !ok {
		return db.ErrNotFound
	}
	delete(f.users, username)
	return nil
}

type fakeRooms struct {
	mu     sync.Mutex
	nextID int64
	rooms  []*room.Room
	users  *fakeUsers
}

func (f *fakeRooms) find(id string) *room.Room {
	for _, r := range f.rooms {
		if r.UUID == id {
			return r
		}
	}
	return nil
}

func (f *fakeRooms) filter(keep func(*room.Room) bool) []room.Room {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]room.Room, 0)
	for _, r := range f.rooms {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

func (f *fakeRooms) List(context.Context) ([]room.Room, error) {
	return f.filter(func(*room.Room) bool { return true }), nil
}

func (f *fakeRooms) ListPublic(context.Context) ([]room.Room, error) {
	return f.filter(func(r *room.Room) bool { return !r.IsPrivate }), nil
}

func (f *fakeRooms) ListPrivate(context.Context) ([]room.Room, error) {
	return f.filter(func(r *room.Room) bool { return r.IsPrivate }), nil
}

func (f *fakeRooms) ListByCreator(_ context.Context, creatorID int64) ([]room.Room, error) {
	return f.filter(func(r *room.Room) bool { return r.CreatorID == creatorID }), nil
}

func (f *fakeRooms) Create(ctx context.Context, in room.NewRoom, creator string) (*room.Room, error) {
	owner, err := f.users.GetCredentials(ctx, creator)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	r := &room.Room{
		ID:          f.nextID,
		UUID:        fmt.Sprintf("00000000-0000-4000-8000-%012d", f.nextID),
		Name:        in.Name,
		Description: in.Description,
		RoomType:    in.RoomType,
		IsPrivate:   in.IsPrivate,
		CreatorID:   owner.ID,
	}
	f.rooms = append(f.rooms, r)
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) Get(_ context.Context, id string) (*room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.find(id)
	if r == nil {
		return nil, db.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) Owner(ctx context.Context, id string) (string, error) {
	r, err := f.Get(ctx, id)
	if err != nil {
		return "", err
	}
	all, _ := f.users.List(ctx)
	for _, u := range all {
		if u.ID == r.CreatorID {
			return u.Username, nil
		}
	}
	return "", db.ErrNotFound
}

func (f *fakeRooms) Update(_ context.Context, id string, fields map[string]any) (*room.Room, error) {
	if len(fields) == 0 {
		return nil, db.ErrNoUpdateData
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.find(id)
	if r == nil {
		return nil, db.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			r.Name = v.(string)
		case "description":
			r.Description = v.(string)
		case "roomType":
			r.RoomType = room.Type(v.(string))
		case "isPrivate":
			r.IsPrivate = v.(bool)
		}
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, r := range f.rooms {
		if r.UUID == id {
			f.rooms = append(f.rooms[:i], f.rooms[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeRooms) Join(_ context.Context, id string) (*room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.find(id)
	if r == nil {
		return nil, db.ErrNotFound
	}
	r.Participants++
	cp := *r
	return &cp, nil
}

func (f *fakeRooms) Leave(_ context.Context, id string) (*room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.find(id)
	if r == nil || r.Participants == 0 {
		return nil, db.ErrNotFound
	}
	r.Participants--
	cp := *r
	return &cp, nil
}

type published struct {
	roomID       string
	participants int
}

type fakePresence struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePresence) Publish(roomID string, participants int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, published{roomID, participants})
}

func (f *fakePresence) Serve(_ string, conn *websocket.Conn) error {
	return conn.Close()
}

type testEnv struct {
	handler  http.Handler
	users    *fakeUsers
	rooms    *fakeRooms
	presence *fakePresence
	codec    *jwt.Codec
	metrics  *metrics.Metrics
	deps     *AppDeps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUsers()
	rooms := &fakeRooms{users: users}
	users.rooms = rooms

	codec := jwt.NewCodec(testSecret, 0)
	m := metrics.New(prometheus.NewRegistry())
	pres := &fakePresence{}

	cfg := &configs.AppConfig{
		Environment:    "test",
		AllowedOrigins: []string{"https://app.example.org"},
		BcryptCost:     4,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		JitsiAppID:     "mocrs-app",
		AppDomain:      "meet.example.org",
	}

	deps := &AppDeps{
		Config:   cfg,
		Codec:    codec,
		Minter:   meeting.NewMinter(codec, meeting.Config{AppID: cfg.JitsiAppID, AppDomain: cfg.AppDomain}),
		Users:    users,
		Rooms:    rooms,
		Presence: pres,
		Metrics:  m,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testEnv{
		handler:  Router(ctx, deps),
		users:    users,
		rooms:    rooms,
		presence: pres,
		codec:    codec,
		metrics:  m,
		deps:     deps,
	}
}

func (e *testEnv) token(t *testing.T, username string, isAdmin bool) string {
	t.Helper()

	tok, err := e.codec.IssueSession(username, isAdmin)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	return tok
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]storage.ObjectInfo
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]storage.ObjectInfo)}
}

// put stands in for the client's PUT to a presigned URL.
func (f *fakeStorage) put(key, contentType string, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = storage.ObjectInfo{ContentType: contentType, ContentLength: size}
}

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeStorage) PresignUpload(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	return "https://bucket.test/upload/" + key, nil
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.test/download/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Stat(_ context.Context, key string) (*storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &info, nil
}
