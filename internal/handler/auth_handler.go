/*
Package handler provides HTTP handler functions for agent authentication and account management.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"deskhub/internal/app/agent"
	"deskhub/internal/app/db"
	"deskhub/internal/pkg/auth/jwt"
	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/logx"
	"deskhub/internal/pkg/randx"
	"deskhub/internal/pkg/req"
	"deskhub/internal/pkg/resp"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)

type RegisterInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// HandleRegister processes the request to create a new agent account.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		displayName := strings.TrimSpace(input.DisplayName)
		if displayName == "" {
			displayName = input.Username
		}
		if utf8.RuneCountInString(displayName) > 60 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		created, err := deps.Agents.Create(r.Context(), randx.AgentID(), input.Username, string(hashedPassword), displayName)
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create agent in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Agents.UpdateLastLogin(r.Context(), created.ID); err != nil {
			logx.Error(err, "register: failed to update last_login_at", "agent_id", created.ID)
		}

		respondWithSession(w, r, deps, created)
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin processes an agent sign-in request and issues an identity token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		found, hash, err := deps.Agents.GetByUsername(r.Context(), input.Username)
		if err != nil {
			if errors.Is(err, agent.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}
			logx.Error(err, "failed to load agent for login", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Agents.UpdateLastLogin(r.Context(), found.ID); err != nil {
			logx.Error(err, "login: failed to update last_login_at", "agent_id", found.ID)
		}

		respondWithSession(w, r, deps, found)
	}
}

// respondWithSession issues a signed agent token and writes the session response.
func respondWithSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, a *agent.Agent) {
	payload := &jwt.Payload{
		ID:          a.ID,
		Role:        jwt.RoleAgent,
		DisplayName: a.DisplayName,
	}

	tokenString, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.AgentSessionExpiration)
	if err != nil {
		logx.Error(err, "failed to generate agent session token")
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"token": tokenString,
		"agent": map[string]any{
			"id":          a.ID,
			"username":    a.Username,
			"displayName": a.DisplayName,
			"lastLoginAt": time.Now().Format(time.RFC3339),
		},
	})
}

// requireAgent extracts the authenticated staff identity from the request
// context, rejecting anonymous and visitor sessions.
func requireAgent(r *http.Request) (*jwt.Payload, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil || payload.Role != jwt.RoleAgent {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}
	return payload, nil
}
