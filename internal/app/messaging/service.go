/*
Package messaging implements direct messages between staff members.

This file defines the Service struct, which enforces the mutation rules (ownership,
size limits, attachment validation) in front of the Repo. Realtime fan-out is not
triggered here; the handler layer dispatches events only after a mutation commits.
*/
package messaging

import (
	"context"
	"errors"
	"time"

	"deskhub/internal/app/db"
	"deskhub/internal/app/storage"
	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/logx"
	"deskhub/internal/pkg/randx"
)

const (
	// MaxBodyBytes is the maximum allowed size (in bytes) for message body text.
	MaxBodyBytes = 5000

	// MaxAttachmentsCount is the maximum number of attachments allowed per message.
	MaxAttachmentsCount = 3

	// DefaultHistoryLimit is the page size for conversation history listings.
	DefaultHistoryLimit = 50
)

// Service enforces direct-message business rules in front of the Repo.
type Service struct {
	repo *Repo

	// files removes orphaned attachment objects after a message deletion.
	// May be nil in tests; cleanup is then skipped.
	files storage.StorageService
}

// NewService constructs a Service over the given repository and object storage.
func NewService(repo *Repo, files storage.StorageService) *Service {
	return &Service{repo: repo, files: files}
}

// Send validates and persists a new message from senderID to receiverID.
func (s *Service) Send(ctx context.Context, senderID, receiverID, body string, attachments []Attachment) (*Message, *errs.CustomError) {
	if receiverID == "" || receiverID == senderID {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if body == "" && len(attachments) == 0 {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if len(body) > MaxBodyBytes {
		return nil, errs.NewError(errs.ErrMessageBodyTooLong)
	}

	if len(attachments) > MaxAttachmentsCount {
		return nil, errs.NewError(errs.ErrAttachmentCountInvalid, MaxAttachmentsCount)
	}

	for _, a := range attachments {
		if err := ValidateAttachmentType(a.Name, a.MimeType); err != nil {
			return nil, err
		}
		if err := ValidateAttachmentSize(a.Size); err != nil {
			return nil, err
		}
	}

	msg, err := s.repo.Create(ctx, randx.MessageID(), senderID, receiverID, body, attachments)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, errs.NewError(errs.ErrPeerNotFound)
		}
		logx.Error(err, "failed to persist message", "sender_id", senderID, "receiver_id", receiverID)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return msg, nil
}

// Edit replaces the body of the sender's own undeleted message.
func (s *Service) Edit(ctx context.Context, id, senderID, body string) (*Message, *errs.CustomError) {
	if body == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if len(body) > MaxBodyBytes {
		return nil, errs.NewError(errs.ErrMessageBodyTooLong)
	}

	msg, err := s.repo.UpdateBody(ctx, id, senderID, body)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return nil, errs.NewError(errs.ErrMessageNotFound)
		}
		logx.Error(err, "failed to edit message", "message_id", id)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return msg, nil
}

// Delete soft-deletes the sender's own message and removes its attachment
// objects from storage. Object cleanup is best-effort: a storage failure
// leaves an orphaned file, never a failed deletion.
func (s *Service) Delete(ctx context.Context, id, senderID string) (*Message, *errs.CustomError) {
	prior, err := s.repo.Get(ctx, id, senderID)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return nil, errs.NewError(errs.ErrMessageNotFound)
		}
		logx.Error(err, "failed to load message before delete", "message_id", id)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	msg, err := s.repo.SoftDelete(ctx, id, senderID)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return nil, errs.NewError(errs.ErrMessageNotFound)
		}
		logx.Error(err, "failed to delete message", "message_id", id)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	if s.files != nil {
		for _, a := range prior.Attachments {
			if err := s.files.Delete(ctx, a.Key); err != nil {
				logx.Warn("failed to delete attachment object", "file_key", a.Key, "error", err)
			}
		}
	}

	return msg, nil
}

// MarkRead stamps a single received message read. Re-marking an already-read
// message is accepted and returns the unchanged row.
func (s *Service) MarkRead(ctx context.Context, id, receiverID string) (*Message, *errs.CustomError) {
	msg, err := s.repo.MarkRead(ctx, id, receiverID)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return nil, errs.NewError(errs.ErrMessageNotFound)
		}
		logx.Error(err, "failed to mark message read", "message_id", id)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return msg, nil
}

// MarkAllRead stamps every unread received message read and returns the
// distinct senders of the affected messages.
func (s *Service) MarkAllRead(ctx context.Context, receiverID string) ([]string, *errs.CustomError) {
	senderIDs, err := s.repo.MarkAllRead(ctx, receiverID)
	if err != nil {
		logx.Error(err, "failed to mark all messages read", "receiver_id", receiverID)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return senderIDs, nil
}

// History pages the conversation between identity and peerID, newest first.
// A zero cursor starts from now.
func (s *Service) History(ctx context.Context, identity, peerID string, before time.Time, limit int) ([]Message, *errs.CustomError) {
	if peerID == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if before.IsZero() {
		before = time.Now()
	}

	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	messages, err := s.repo.ListConversation(ctx, identity, peerID, before, limit)
	if err != nil {
		logx.Error(err, "failed to list conversation", "identity", identity, "peer_id", peerID)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return messages, nil
}

// Conversations returns identity's recent-conversations snapshot.
func (s *Service) Conversations(ctx context.Context, identity string) ([]ConversationSummary, *errs.CustomError) {
	summaries, err := s.repo.RecentConversations(ctx, identity)
	if err != nil {
		logx.Error(err, "failed to compute recent conversations", "identity", identity)
		return nil, errs.NewError(errs.ErrUnknown)
	}

	return summaries, nil
}
