package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/Dosada05/academy-system/notifications"
	"github.com/Dosada05/academy-system/repositories"
	"github.com/Dosada05/academy-system/sensitive"
	"github.com/Dosada05/academy-system/storage"
	"github.com/Dosada05/academy-system/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200

	MaxPhotoSize = 5 << 20
)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Notifier delivers events to subscribers of a room.
type Notifier interface {
	BroadcastToRoom(room string, message notifications.Message)
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, academyID int, input sensitive.Record) (sensitive.Record, error)
	GetPlayer(ctx context.Context, academyID, playerID int) (sensitive.Record, error)
	ListPlayers(ctx context.Context, academyID int, page Page) (*PlayerList, error)
	UpdatePlayer(ctx context.Context, academyID, playerID int, input sensitive.Record) (sensitive.Record, error)
	DeletePlayer(ctx context.Context, academyID, playerID int) error
	UploadPlayerPhoto(ctx context.Context, academyID, playerID int, file io.Reader, size int64, contentType string) (sensitive.Record, error)
}

type Page struct {
	Limit  int
	Offset int
}

type PlayerList struct {
	Players []sensitive.Record `json:"players"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	notifier   Notifier
	logger     *slog.Logger
}

// NewPlayerService wires the player use cases. uploader and notifier may be
// nil when photo storage or live notifications are not configured.
func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	notifier Notifier,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, academyID int, input sensitive.Record) (sensitive.Record, error) {
	if err := validatePlayerInput(input, true); err != nil {
		return nil, err
	}

	row, err := sensitive.ToStorage(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	created, err := s.playerRepo.Create(ctx, academyID, row)
	if err != nil {
		return nil, s.mapRepoError(err, "create player")
	}

	player := s.toView(created)
	s.publish(academyID, notifications.EventPlayerCreated, rowID(created), attributeNames(input))
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, academyID, playerID int) (sensitive.Record, error) {
	row, err := s.playerRepo.GetByID(ctx, academyID, playerID)
	if err != nil {
		return nil, s.mapRepoError(err, fmt.Sprintf("get player %d", playerID))
	}
	return s.toView(row), nil
}

func (s *playerService) ListPlayers(ctx context.Context, academyID int, page Page) (*PlayerList, error) {
	if page.Limit == 0 {
		page.Limit = DefaultPageSize
	}
	if page.Limit < 0 || page.Limit > MaxPageSize || page.Offset < 0 {
		return nil, ErrInvalidPagination
	}

	var (
		rows  []sensitive.Row
		total int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.playerRepo.List(gCtx, academyID, page.Limit, page.Offset)
		if err != nil {
			return fmt.Errorf("failed to list players: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.playerRepo.Count(gCtx, academyID)
		if err != nil {
			return fmt.Errorf("failed to count players: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	players := make([]sensitive.Record, 0, len(rows))
	for _, row := range rows {
		players = append(players, s.toView(row))
	}
	return &PlayerList{Players: players, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, academyID, playerID int, input sensitive.Record) (sensitive.Record, error) {
	if len(input) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if err := validatePlayerInput(input, false); err != nil {
		return nil, err
	}

	row, err := sensitive.ToStorage(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	updated, err := s.playerRepo.Update(ctx, academyID, playerID, row)
	if err != nil {
		return nil, s.mapRepoError(err, fmt.Sprintf("update player %d", playerID))
	}

	s.publish(academyID, notifications.EventPlayerUpdated, playerID, attributeNames(input))
	return s.toView(updated), nil
}

func (s *playerService) DeletePlayer(ctx context.Context, academyID, playerID int) error {
	existing, err := s.playerRepo.GetByID(ctx, academyID, playerID)
	if err != nil {
		return s.mapRepoError(err, fmt.Sprintf("get player %d", playerID))
	}

	if err := s.playerRepo.Delete(ctx, academyID, playerID); err != nil {
		return s.mapRepoError(err, fmt.Sprintf("delete player %d", playerID))
	}

	s.deletePhoto(ctx, photoKey(existing))
	s.publish(academyID, notifications.EventPlayerDeleted, playerID, nil)
	return nil
}

func (s *playerService) UploadPlayerPhoto(ctx context.Context, academyID, playerID int, file io.Reader, size int64, contentType string) (sensitive.Record, error) {
	if s.uploader == nil {
		return nil, ErrPhotoStorageUnavailable
	}
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, ErrInvalidPhotoType
	}
	if size > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	existing, err := s.playerRepo.GetByID(ctx, academyID, playerID)
	if err != nil {
		return nil, s.mapRepoError(err, fmt.Sprintf("get player %d", playerID))
	}

	key := fmt.Sprintf("players/%d/%d/%s%s", academyID, playerID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, io.LimitReader(file, MaxPhotoSize)); err != nil {
		return nil, fmt.Errorf("failed to upload photo for player %d: %w", playerID, err)
	}

	updated, err := s.playerRepo.Update(ctx, academyID, playerID, sensitive.Row{"photo_key": key})
	if err != nil {
		s.deletePhoto(ctx, key)
		return nil, s.mapRepoError(err, fmt.Sprintf("save photo for player %d", playerID))
	}

	s.deletePhoto(ctx, photoKey(existing))
	s.publish(academyID, notifications.EventPlayerPhotoUpdated, playerID, []string{"photoUrl"})
	return s.toView(updated), nil
}

// toView converts a stored row to its wire form and swaps the internal photo
// key for a public URL.
func (s *playerService) toView(row sensitive.Row) sensitive.Record {
	rec := sensitive.ToWire(row)
	key := photoKey(row)
	delete(rec, "photoKey")
	if key != "" && s.uploader != nil {
		rec["photoUrl"] = s.uploader.GetPublicURL(key)
	} else {
		rec["photoUrl"] = nil
	}
	return rec
}

func (s *playerService) deletePhoto(ctx context.Context, key string) {
	if key == "" || s.uploader == nil {
		return
	}
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete player photo", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *playerService) publish(academyID int, eventType string, playerID int, attrs []string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToRoom(notifications.AcademyRoom(academyID), notifications.Message{
		Type:    eventType,
		Payload: notifications.PlayerEvent{PlayerID: playerID, Attributes: attrs},
	})
}

func (s *playerService) mapRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerInvalidValue), errors.Is(err, repositories.ErrPlayerColumn):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	case errors.Is(err, repositories.ErrAcademyNotFound):
		return ErrForbiddenOperation
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func validatePlayerInput(input sensitive.Record, creating bool) error {
	for attr, v := range input {
		if c, ok := sensitive.PlainColumnFor(attr); ok && c.ReadOnly {
			return fmt.Errorf("%w: %q", ErrReadOnlyAttribute, attr)
		}
		switch attr {
		case "firstName", "lastName":
			if str, _ := v.(string); strings.TrimSpace(str) == "" {
				return ErrPlayerNameRequired
			}
		case "email", "guardianEmail":
			if str, ok := v.(string); ok && str != "" && !utils.IsValidEmail(str) {
				return fmt.Errorf("%w: %q", ErrInvalidEmail, attr)
			}
		}
	}
	if creating {
		for _, attr := range []string{"firstName", "lastName"} {
			if _, ok := input[attr]; !ok {
				return ErrPlayerNameRequired
			}
		}
	}
	return nil
}

func attributeNames(rec sensitive.Record) []string {
	names := make([]string, 0, len(rec))
	for k := range rec {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func photoKey(row sensitive.Row) string {
	if s, ok := row["photo_key"].(string); ok {
		return s
	}
	return ""
}

func rowID(row sensitive.Row) int {
	switch v := row["id"].(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
