package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Dosada05/academy-system/middleware"
	"github.com/Dosada05/academy-system/sensitive"
	"github.com/Dosada05/academy-system/services"
)

// multipart overhead allowed on top of the photo itself
const photoFormSlack = 1 << 20

type PlayerHandler struct {
	playerService services.PlayerService
	logger        *slog.Logger
}

func NewPlayerHandler(playerService services.PlayerService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		logger:        logger,
	}
}

func (h *PlayerHandler) academyID(w http.ResponseWriter, r *http.Request) (int, bool) {
	academyID, err := middleware.GetAcademyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger, "authentication required")
		return 0, false
	}
	return academyID, true
}

func (h *PlayerHandler) scope(w http.ResponseWriter, r *http.Request) (academyID, playerID int, ok bool) {
	academyID, ok = h.academyID(w, r)
	if !ok {
		return 0, 0, false
	}
	playerID, err := readIDParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return 0, 0, false
	}
	return academyID, playerID, true
}

// ListPlayers godoc
// @Summary  List players of the caller's academy
// @Tags     players
// @Produce  json
// @Param    limit  query int false "Page size (default 50, max 200)"
// @Param    offset query int false "Offset"
// @Success  200 {object} services.PlayerList
// @Security BearerAuth
// @Router   /players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	academyID, ok := h.academyID(w, r)
	if !ok {
		return
	}

	limit, err := readIntQuery(r, "limit")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	offset, err := readIntQuery(r, "offset")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	list, err := h.playerService.ListPlayers(r.Context(), academyID, services.Page{Limit: limit, Offset: offset})
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// CreatePlayer godoc
// @Summary  Create a player
// @Tags     players
// @Accept   json
// @Produce  json
// @Param    input body object true "Player attributes"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Security BearerAuth
// @Router   /players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	academyID, ok := h.academyID(w, r)
	if !ok {
		return
	}

	var input sensitive.Record
	if err := readRecord(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), academyID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetPlayer godoc
// @Summary  Get a player
// @Tags     players
// @Produce  json
// @Param    playerID path int true "Player ID"
// @Success  200 {object} map[string]interface{}
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /players/{playerID} [get]
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	academyID, playerID, ok := h.scope(w, r)
	if !ok {
		return
	}

	player, err := h.playerService.GetPlayer(r.Context(), academyID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// UpdatePlayer godoc
// @Summary  Update some attributes of a player; null clears a value
// @Tags     players
// @Accept   json
// @Produce  json
// @Param    playerID path int true "Player ID"
// @Param    input body object true "Attributes to change"
// @Success  200 {object} map[string]interface{}
// @Failure  400,404 {object} map[string]string
// @Security BearerAuth
// @Router   /players/{playerID} [patch]
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	academyID, playerID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var input sensitive.Record
	if err := readRecord(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	player, err := h.playerService.UpdatePlayer(r.Context(), academyID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// DeletePlayer godoc
// @Summary  Delete a player and its photo
// @Tags     players
// @Param    playerID path int true "Player ID"
// @Success  204
// @Failure  404 {object} map[string]string
// @Security BearerAuth
// @Router   /players/{playerID} [delete]
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	academyID, playerID, ok := h.scope(w, r)
	if !ok {
		return
	}

	if err := h.playerService.DeletePlayer(r.Context(), academyID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPlayerPhoto godoc
// @Summary  Replace a player's photo
// @Tags     players
// @Accept   multipart/form-data
// @Produce  json
// @Param    playerID path int true "Player ID"
// @Param    photo formData file true "JPEG, PNG or WebP, up to 5 MiB"
// @Success  200 {object} map[string]interface{}
// @Failure  400,404,413,503 {object} map[string]string
// @Security BearerAuth
// @Router   /players/{playerID}/photo [post]
func (h *PlayerHandler) UploadPlayerPhoto(w http.ResponseWriter, r *http.Request) {
	academyID, playerID, ok := h.scope(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxPhotoSize+photoFormSlack)
	if err := r.ParseMultipartForm(photoFormSlack); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			mapServiceErrorToHTTP(w, r, h.logger, services.ErrPhotoTooLarge)
			return
		}
		badRequestResponse(w, r, h.logger, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, h.logger, errors.New("form field \"photo\" is required"))
		return
	}
	defer file.Close()

	// The declared Content-Type is client-controlled, sniff the bytes instead.
	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		badRequestResponse(w, r, h.logger, fmt.Errorf("failed to read photo: %w", err))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		serverErrorResponse(w, r, h.logger, err)
		return
	}
	contentType := http.DetectContentType(sniff[:n])

	player, err := h.playerService.UploadPlayerPhoto(r.Context(), academyID, playerID, file, header.Size, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
