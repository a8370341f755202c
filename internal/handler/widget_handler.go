/*
Package handler provides HTTP handler functions for the embeddable chat widget bootstrap.

Anonymous visitors must solve a Proof-of-Work challenge before the server issues them a
short-lived visitor identity token. The gate keeps scripted session churn off the
database and the realtime hub.
*/
package handler

import (
	"net/http"

	"deskhub/internal/pkg/auth/jwt"
	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/logx"
	"deskhub/internal/pkg/randx"
	"deskhub/internal/pkg/req"
	"deskhub/internal/pkg/resp"
)

// HandleWidgetChallenge issues a fresh PoW nonce for the widget bootstrap.
func HandleWidgetChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      deps.Pow.GenerateNonce(),
			"difficulty": deps.Config.PowDifficulty,
		})
	}
}

type WidgetSessionInput struct {
	Nonce       string `json:"nonce"`
	Counter     string `json:"counter"`
	DisplayName string `json:"displayName,omitempty"`
}

// HandleWidgetSession validates the solved challenge and issues a visitor
// identity token for the widget's websocket connection.
func HandleWidgetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input WidgetSessionInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Nonce == "" || input.Counter == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		if _, err := deps.Pow.ValidateProof(input.Nonce, input.Counter); err != nil {
			logx.Warn("widget session rejected: invalid proof", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		displayName := input.DisplayName
		if displayName == "" {
			ref, err := randx.VisitorRef()
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			displayName = "Visitor " + ref
		}

		payload := &jwt.Payload{
			ID:          randx.VisitorID(),
			Role:        jwt.RoleVisitor,
			DisplayName: displayName,
		}

		tokenString, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.VisitorSessionExpiration)
		if err != nil {
			logx.Error(err, "failed to generate visitor session token")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": tokenString,
			"visitor": map[string]any{
				"id":          payload.ID,
				"displayName": displayName,
			},
		})
	}
}
