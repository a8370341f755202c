/*
Package handler provides HTTP handler functions for direct-message mutations.

Every mutation commits against the message store first and only then hands the result
to the realtime dispatcher, so a push failure can never roll back a committed change.
*/
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"deskhub/internal/app/messaging"
	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/req"
	"deskhub/internal/pkg/resp"
)

type SendMessageInput struct {
	ReceiverID  string                 `json:"receiverId"`
	Body        string                 `json:"body,omitempty"`
	Attachments []messaging.Attachment `json:"attachments,omitempty"`
}

// HandleSendMessage persists a new direct message and fans it out to both parties.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// Attachment keys must sit in the sender's own upload namespace.
		expectedKeyPrefix := fmt.Sprintf("dm/%s/", payload.ID)
		for _, a := range input.Attachments {
			if !strings.HasPrefix(a.Key, expectedKeyPrefix) {
				resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentKeyInvalid))
				return
			}
		}

		msg, sendErr := deps.Messages.Send(r.Context(), payload.ID, input.ReceiverID, input.Body, input.Attachments)
		if sendErr != nil {
			resp.RespondError(w, r, sendErr)
			return
		}

		deps.Dispatcher.MessageCreated(r.Context(), msg)

		resp.RespondSuccess(w, r, msg)
	}
}

type EditMessageInput struct {
	Body string `json:"body"`
}

// HandleEditMessage replaces the body of the caller's own message and fans out the edit.
func HandleEditMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		var input EditMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, editErr := deps.Messages.Edit(r.Context(), chi.URLParam(r, "id"), payload.ID, input.Body)
		if editErr != nil {
			resp.RespondError(w, r, editErr)
			return
		}

		deps.Dispatcher.MessageUpdated(r.Context(), msg)

		resp.RespondSuccess(w, r, msg)
	}
}

// HandleDeleteMessage soft-deletes the caller's own message and fans out the deletion.
func HandleDeleteMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		msg, delErr := deps.Messages.Delete(r.Context(), chi.URLParam(r, "id"), payload.ID)
		if delErr != nil {
			resp.RespondError(w, r, delErr)
			return
		}

		deps.Dispatcher.MessageDeleted(r.Context(), msg)

		resp.RespondSuccess(w, r, msg)
	}
}

// HandleMarkMessageRead stamps a received message read and fans out the receipt.
func HandleMarkMessageRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		msg, readErr := deps.Messages.MarkRead(r.Context(), chi.URLParam(r, "id"), payload.ID)
		if readErr != nil {
			resp.RespondError(w, r, readErr)
			return
		}

		deps.Dispatcher.MessageRead(r.Context(), msg)

		resp.RespondSuccess(w, r, msg)
	}
}

// HandleMarkAllRead stamps every unread received message read. Each original
// sender is then told their messages were read, and the caller gets one
// refreshed conversations snapshot.
func HandleMarkAllRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		senderIDs, markErr := deps.Messages.MarkAllRead(r.Context(), payload.ID)
		if markErr != nil {
			resp.RespondError(w, r, markErr)
			return
		}

		deps.Dispatcher.MessagesRead(r.Context(), payload.ID, senderIDs)

		resp.RespondSuccess(w, r, map[string]any{
			"affectedSenders": len(senderIDs),
		})
	}
}

// HandleConversationHistory pages the message history with one peer, newest first.
// The optional "before" query parameter (RFC3339) sets the paging cursor.
func HandleConversationHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		var before time.Time
		if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
			parsed, err := time.Parse(time.RFC3339, beforeStr)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			before = parsed
		}

		messages, histErr := deps.Messages.History(r.Context(), payload.ID, chi.URLParam(r, "peerID"), before, messaging.DefaultHistoryLimit)
		if histErr != nil {
			resp.RespondError(w, r, histErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}

// HandleRecentConversations returns the caller's recent-conversations snapshot.
// The same query backs the realtime refresh pushed after message mutations.
func HandleRecentConversations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		summaries, convErr := deps.Messages.Conversations(r.Context(), payload.ID)
		if convErr != nil {
			resp.RespondError(w, r, convErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"conversations": summaries,
		})
	}
}
