package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/academy-system/middleware"
	"github.com/Dosada05/academy-system/services"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   string
	logger      *slog.Logger
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

// Register godoc
// @Summary  Create an academy and its owner account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body services.RegisterInput true "Academy and owner"
// @Success  201 {object} map[string]interface{}
// @Failure  400,409 {object} map[string]string
// @Router   /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	if input.AcademyName == "" || input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, h.logger, errors.New("academy name, email, and password are required"))
		return
	}

	user, academy, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	h.logger.Info("academy registered", slog.Int("academy_id", academy.ID), slog.Int("user_id", user.ID))

	response := jsonResponse{
		"user":    user,
		"academy": academy,
	}

	err = writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Login godoc
// @Summary  Exchange credentials for an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body services.LoginInput true "Credentials"
// @Success  200 {object} map[string]string
// @Failure  400,401 {object} map[string]string
// @Router   /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, h.logger, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	tokenString, err := middleware.IssueToken(h.jwtSecret, user, middleware.TokenTTL)
	if err != nil {
		serverErrorResponse(w, r, h.logger, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"token": tokenString,
		"user":  user,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
