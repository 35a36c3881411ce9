package handler

import (
	"net/http"

	"github.com/sovaehr/authapi/internal/domain"
	"github.com/sovaehr/authapi/internal/middleware"
)

type signinRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type deleteUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type retrieveUserIDRequest struct {
	Email string `json:"email" validate:"required"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := h.decodeValidate(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email, err := domain.NewEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	password, err := domain.NewPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.auth.SignIn(r.Context(), email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := h.decodeValidate(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email, err := domain.NewEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	password, err := domain.NewPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	redirect := req.RedirectTo
	if redirect == "" {
		redirect = h.cfg.EmailConfirmRedirect
	}

	if err := h.auth.SignUp(r.Context(), email, password, redirect); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Signup successful, please check your email to confirm.",
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		// Guard always runs before this handler; a nil user means a wiring bug.
		writeError(w, r, errMissingGuard)
		return
	}

	if err := h.auth.SignOut(r.Context(), user.Token); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User signed out successfully"})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := h.decodeValidate(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.auth.DeleteUser(r.Context(), req.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *Handler) RetrieveUserID(w http.ResponseWriter, r *http.Request) {
	var req retrieveUserIDRequest
	if err := h.decodeValidate(r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email, err := domain.NewEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := h.auth.RetrieveUserID(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}
