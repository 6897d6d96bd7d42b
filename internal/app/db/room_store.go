package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mocrs/internal/app/room"
)

const roomColumns = `id, uuid::text, name, description, room_type, is_private, creator_id, participants`

var roomFieldColumns = map[string]string{
	"roomType":  "room_type",
	"isPrivate": "is_private",
}

// RoomStore persists rooms in the rooms table. Rooms are addressed by their uuid.
type RoomStore struct {
	pool *pgxpool.Pool
}

// NewRoomStore returns a RoomStore backed by pool.
func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool}
}

func scanRoom(row pgx.Row) (*room.Room, error) {
	var r room.Room
	var roomType string
	err := row.Scan(&r.ID, &r.UUID, &r.Name, &r.Description, &roomType, &r.IsPrivate, &r.CreatorID, &r.Participants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.RoomType = room.Type(roomType)
	return &r, nil
}

func collectRooms(rows pgx.Rows) ([]room.Room, error) {
	defer rows.Close()

	rooms := make([]room.Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

func (s *RoomStore) list(ctx context.Context, where string, args ...any) ([]room.Room, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+roomColumns+` FROM rooms `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return collectRooms(rows)
}

// List returns every room.
func (s *RoomStore) List(ctx context.Context) ([]room.Room, error) {
	return s.list(ctx, "")
}

// ListPublic returns the rooms that are not private.
func (s *RoomStore) ListPublic(ctx context.Context) ([]room.Room, error) {
	return s.list(ctx, "WHERE is_private = false")
}

// ListPrivate returns the private rooms.
func (s *RoomStore) ListPrivate(ctx context.Context) ([]room.Room, error) {
	return s.list(ctx, "WHERE is_private = true")
}

// ListByCreator returns the rooms created by the user with creatorID.
func (s *RoomStore) ListByCreator(ctx context.Context, creatorID int64) ([]room.Room, error) {
	return s.list(ctx, "WHERE creator_id = $1", creatorID)
}

// Create inserts a room owned by creatorUsername. A missing creator is ErrNotFound.
func (s *RoomStore) Create(ctx context.Context, in room.NewRoom, creatorUsername string) (*room.Room, error) {
	const q = `
		INSERT INTO rooms (uuid, name, description, room_type, is_private, creator_id)
		SELECT $1, $2, $3, $4, $5, id FROM users WHERE username = $6
		RETURNING ` + roomColumns

	r, err := scanRoom(s.pool.QueryRow(ctx, q,
		uuid.New(), in.Name, in.Description, string(in.RoomType), in.IsPrivate, creatorUsername,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return r, nil
}

// Get returns the room with the given uuid. A malformed uuid is ErrNotFound.
func (s *RoomStore) Get(ctx context.Context, id string) (*room.Room, error) {
	return s.one(ctx, `SELECT `+roomColumns+` FROM rooms WHERE uuid = $1`, id)
}

// Owner returns the username of the room's creator.
func (s *RoomStore) Owner(ctx context.Context, id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrNotFound
	}

	var owner string
	err = s.pool.QueryRow(ctx,
		`SELECT u.username FROM rooms r JOIN users u ON u.id = r.creator_id WHERE r.uuid = $1`,
		parsed,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load owner of room %s: %w", id, err)
	}
	return owner, nil
}

// Update applies a partial update keyed by JSON field name.
func (s *RoomStore) Update(ctx context.Context, id string, fields map[string]any) (*room.Room, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	setCols, values, err := PartialUpdate(fields, roomFieldColumns)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`UPDATE rooms SET %s WHERE uuid = $%d RETURNING %s`, setCols, len(values)+1, roomColumns)
	return s.scanOne(s.pool.QueryRow(ctx, q, append(values, parsed)...), id)
}

// Delete removes the room.
func (s *RoomStore) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE uuid = $1`, parsed)
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Join increments the participant count.
func (s *RoomStore) Join(ctx context.Context, id string) (*room.Room, error) {
	return s.one(ctx, `UPDATE rooms SET participants = participants + 1 WHERE uuid = $1 RETURNING `+roomColumns, id)
}

// Leave decrements the participant count. An empty room is reported as ErrNotFound.
func (s *RoomStore) Leave(ctx context.Context, id string) (*room.Room, error) {
	return s.one(ctx,
		`UPDATE rooms SET participants = participants - 1 WHERE uuid = $1 AND participants > 0 RETURNING `+roomColumns,
		id,
	)
}

func (s *RoomStore) one(ctx context.Context, q, id string) (*room.Room, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.scanOne(s.pool.QueryRow(ctx, q, parsed), id)
}

func (s *RoomStore) scanOne(row pgx.Row, id string) (*room.Room, error) {
	r, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	return r, nil
}
