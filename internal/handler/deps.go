package handler

import (
	"context"

	"mocrs/internal/app/room"
	"mocrs/internal/app/storage"
	"mocrs/internal/app/user"
	"mocrs/internal/configs"
	"mocrs/internal/pkg/auth/guard"
	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/auth/meeting"
	"mocrs/internal/pkg/metrics"

	"github.com/gorilla/websocket"
)

// UserStore is the credential store the handlers depend on.
type UserStore interface {
	GetCredentials(ctx context.Context, username string) (*user.Credentials, error)
	Create(ctx context.Context, in user.NewUser, passwordHash string) (*user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Get(ctx context.Context, username string) (*user.User, error)
	Update(ctx context.Context, username string, fields map[string]any) (*user.User, error)
	SetAvatarKey(ctx context.Context, username, key string) error
	Delete(ctx context.Context, username string) error
}

// RoomStore is the room persistence the handlers depend on.
type RoomStore interface {
	List(ctx context.Context) ([]room.Room, error)
	ListPublic(ctx context.Context) ([]room.Room, error)
	ListPrivate(ctx context.Context) ([]room.Room, error)
	ListByCreator(ctx context.Context, creatorID int64) ([]room.Room, error)
	Create(ctx context.Context, in room.NewRoom, creatorUsername string) (*room.Room, error)
	Get(ctx context.Context, id string) (*room.Room, error)
	Owner(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) (*room.Room, error)
	Delete(ctx context.Context, id string) error
	Join(ctx context.Context, id string) (*room.Room, error)
	Leave(ctx context.Context, id string) (*room.Room, error)
}

// Presence publishes room occupancy and serves websocket subscribers.
type Presence interface {
	Publish(roomID string, participants int)
	Serve(roomID string, conn *websocket.Conn) error
}

// Pinger is the readiness probe behind /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppDeps carries everything the handlers need. Storage is nil when avatar storage is disabled.
type AppDeps struct {
	Config   *configs.AppConfig
	Codec    *jwt.Codec
	Minter   *meeting.Minter
	Users    UserStore
	Rooms    RoomStore
	Storage  storage.Service
	Presence Presence
	Metrics  *metrics.Metrics
	Guards   *guard.Guards
	DB       Pinger
}
