// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/mora-poll/auth"
	"github.com/danielhkuo/mora-poll/cliparse"
	"github.com/danielhkuo/mora-poll/middleware"
	"github.com/danielhkuo/mora-poll/models"
)

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// Register handles POST /auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}
	if len(req.Username) < 2 || len(req.Username) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username must be 2-50 characters")
		return
	}

	userID := auth.NewUserID()
	_, err := h.db.Exec(`
		INSERT INTO users (id, username, created_at) VALUES ($1, $2, $3)
	`, userID, req.Username, time.Now().UTC())

	if err != nil {
		if isUniqueViolation(err, "users.username") {
			middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("user registered", "user_id", userID)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		UserID:       userID,
		SessionToken: auth.GenerateSessionToken(userID, h.cfg.SessionSecret),
	})
}

// GetMe handles GET /auth/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, username, kek_salt, wrapped_vmk, vmk_iv, wrapped_vmk_prf, prf_vmk_iv, created_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Username, &user.KEKSalt, &user.WrappedVMK,
		&user.VMKIV, &user.WrappedVMKPRF, &user.PRFVMKIV, &user.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// SaveVaultKeys handles POST /vault/keys. A full payload stores the
// password-wrapped VMK (plus the PRF pair when present); a payload carrying
// only the PRF pair commits a biometric wrap to an existing vault.
func (h *UserHandler) SaveVaultKeys(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var req models.SaveVaultKeysRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hasPassword := req.KEKSalt != "" && req.WrappedVMK != "" && req.VMKIV != ""
	hasPRF := req.WrappedVMKPRF != "" && req.PRFVMKIV != ""

	var (
		res sql.Result
		err error
	)
	switch {
	case hasPassword && hasPRF:
		res, err = h.db.Exec(`
			UPDATE users
			SET kek_salt = $1, wrapped_vmk = $2, vmk_iv = $3, wrapped_vmk_prf = $4, prf_vmk_iv = $5
			WHERE id = $6
		`, req.KEKSalt, req.WrappedVMK, req.VMKIV, req.WrappedVMKPRF, req.PRFVMKIV, userID)
	case hasPassword:
		res, err = h.db.Exec(`
			UPDATE users
			SET kek_salt = $1, wrapped_vmk = $2, vmk_iv = $3
			WHERE id = $4
		`, req.KEKSalt, req.WrappedVMK, req.VMKIV, userID)
	case hasPRF:
		// Lazy biometric commit requires an existing password wrap.
		res, err = h.db.Exec(`
			UPDATE users
			SET wrapped_vmk_prf = $1, prf_vmk_iv = $2
			WHERE id = $3 AND wrapped_vmk IS NOT NULL
		`, req.WrappedVMKPRF, req.PRFVMKIV, userID)
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "kek_salt, wrapped_vmk and vmk_iv (or the PRF pair) are required")
		return
	}

	if err != nil {
		slog.Error("failed to save vault keys", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save vault keys")
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to check vault key update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save vault keys")
		return
	}
	if affected == 0 {
		if hasPRF && !hasPassword {
			middleware.ErrorResponse(w, http.StatusConflict, "No vault to attach biometric keys to")
			return
		}
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	slog.Info("vault keys saved", "user_id", userID, "password_wrap", hasPassword, "prf_wrap", hasPRF)

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}
