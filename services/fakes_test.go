package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/academy-system/models"
	"github.com/Dosada05/academy-system/notifications"
	"github.com/Dosada05/academy-system/repositories"
	"github.com/Dosada05/academy-system/sensitive"
	"github.com/Dosada05/academy-system/storage"
)

// fakePlayerRepo keeps rows the way Postgres would hand them back: bytea
// columns as []byte, identifiers as int64.
type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]sensitive.Row
	listErr error
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{rows: make(map[int64]sensitive.Row)}
}

func (r *fakePlayerRepo) Create(_ context.Context, academyID int, row sensitive.Row) (sensitive.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range row {
		if !sensitive.IsKnownColumn(c) {
			return nil, repositories.ErrPlayerColumn
		}
	}
	r.nextID++
	now := time.Now().UTC()
	stored := sensitive.Row{
		"id":         r.nextID,
		"academy_id": int64(academyID),
		"status":     "active",
		"created_at": now,
		"updated_at": now,
	}
	maps.Copy(stored, row)
	r.rows[r.nextID] = stored
	return maps.Clone(stored), nil
}

func (r *fakePlayerRepo) get(academyID, id int) (sensitive.Row, bool) {
	row, ok := r.rows[int64(id)]
	if !ok || row["academy_id"] != int64(academyID) {
		return nil, false
	}
	return row, true
}

func (r *fakePlayerRepo) GetByID(_ context.Context, academyID, id int) (sensitive.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.get(academyID, id)
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return maps.Clone(row), nil
}

func (r *fakePlayerRepo) List(_ context.Context, academyID, limit, offset int) ([]sensitive.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var ids []int64
	for id, row := range r.rows {
		if row["academy_id"] == int64(academyID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]sensitive.Row, 0)
	for i, id := range ids {
		if i < offset || len(out) >= limit {
			continue
		}
		out = append(out, maps.Clone(r.rows[id]))
	}
	return out, nil
}

func (r *fakePlayerRepo) Count(_ context.Context, academyID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row["academy_id"] == int64(academyID) {
			n++
		}
	}
	return n, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, academyID, id int, row sensitive.Row) (sensitive.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.get(academyID, id)
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	maps.Copy(stored, row)
	stored["updated_at"] = time.Now().UTC()
	return maps.Clone(stored), nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, academyID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.get(academyID, id); !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.rows, int64(id))
	return nil
}

func (r *fakePlayerRepo) raw(id int) sensitive.Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.rows[int64(id)])
}

type fakeUploader struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = b
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages map[string][]notifications.Message
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[string][]notifications.Message)}
}

func (n *fakeNotifier) BroadcastToRoom(room string, message notifications.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[room] = append(n.messages[room], message)
}

func (n *fakeNotifier) room(room string) []notifications.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Message(nil), n.messages[room]...)
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	academies map[string]*models.Academy
	err       error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), academies: make(map[string]*models.Academy)}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) CreateAcademyWithOwner(_ context.Context, academy *models.Academy, owner *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.academies[academy.Name]; ok {
		return repositories.ErrAcademyNameConflict
	}
	if _, ok := r.users[owner.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	academy.ID = len(r.academies) + 1
	academy.CreatedAt = time.Now()
	owner.ID = len(r.users) + 1
	owner.AcademyID = academy.ID
	owner.CreatedAt = academy.CreatedAt
	r.academies[academy.Name] = academy
	cp := *owner
	r.users[owner.Email] = &cp
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

var errBoom = errors.New("boom")

func mustID(rec sensitive.Record) int {
	switch v := rec["id"].(type) {
	case int64:
		return int(v)
	default:
		panic(fmt.Sprintf("unexpected id type %T", v))
	}
}
