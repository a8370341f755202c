/*
Package messaging implements direct messages between staff members.

This file defines the Repo struct, the Postgres persistence layer for messages and the
recent-conversations snapshot query.
*/
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMessageNotFound is returned when a message does not exist or the caller
// is not a party allowed to perform the requested mutation on it.
var ErrMessageNotFound = errors.New("message not found")

// Repo provides message persistence on top of a pgx connection pool.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo over the given pool.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const messageColumns = `id::text, sender_id::text, receiver_id::text, body, attachments,
	created_at, edited_at, deleted_at, read_at`

// scanMessage reads one message row in messageColumns order.
func scanMessage(row pgx.Row) (*Message, error) {
	var (
		msg Message
		raw []byte
	)

	err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &raw,
		&msg.CreatedAt, &msg.EditedAt, &msg.DeletedAt, &msg.ReadAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}

	msg.Attachments, err = decodeAttachments(raw)
	if err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}

	return &msg, nil
}

// Create inserts a new message and returns the committed row.
func (r *Repo) Create(ctx context.Context, id, senderID, receiverID, body string, attachments []Attachment) (*Message, error) {
	raw, err := encodeAttachments(attachments)
	if err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, body, attachments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+messageColumns,
		id, senderID, receiverID, body, raw,
	)

	return scanMessage(row)
}

// Get returns one message visible to identity (sender or receiver side).
func (r *Repo) Get(ctx context.Context, id, identity string) (*Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE id = $1 AND (sender_id = $2 OR receiver_id = $2)`,
		id, identity,
	)

	return scanMessage(row)
}

// UpdateBody edits the body of the sender's own undeleted message and stamps
// edited_at. Editing someone else's message yields ErrMessageNotFound.
func (r *Repo) UpdateBody(ctx context.Context, id, senderID, body string) (*Message, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE messages
		SET body = $3, edited_at = now()
		WHERE id = $1 AND sender_id = $2 AND deleted_at IS NULL
		RETURNING `+messageColumns,
		id, senderID, body,
	)

	return scanMessage(row)
}

// SoftDelete marks the sender's own message deleted and clears its body and
// attachments. The row survives so both parties' histories stay consistent.
func (r *Repo) SoftDelete(ctx context.Context, id, senderID string) (*Message, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE messages
		SET deleted_at = now(), body = '', attachments = NULL
		WHERE id = $1 AND sender_id = $2 AND deleted_at IS NULL
		RETURNING `+messageColumns,
		id, senderID,
	)

	return scanMessage(row)
}

// MarkRead stamps read_at on one message addressed to receiverID. Marking an
// already-read message again returns the row unchanged.
func (r *Repo) MarkRead(ctx context.Context, id, receiverID string) (*Message, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE messages
		SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND receiver_id = $2
		RETURNING `+messageColumns,
		id, receiverID,
	)

	return scanMessage(row)
}

// MarkAllRead stamps read_at on every unread message addressed to receiverID
// and returns the distinct sender ids of the affected messages, so the fan-out
// can tell each original sender their messages were read.
func (r *Repo) MarkAllRead(ctx context.Context, receiverID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE messages
		SET read_at = now()
		WHERE receiver_id = $1 AND read_at IS NULL AND deleted_at IS NULL
		RETURNING sender_id::text`,
		receiverID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark all read: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var senderIDs []string
	for rows.Next() {
		var senderID string
		if err := rows.Scan(&senderID); err != nil {
			return nil, fmt.Errorf("scan sender id: %w", err)
		}
		if _, ok := seen[senderID]; ok {
			continue
		}
		seen[senderID] = struct{}{}
		senderIDs = append(senderIDs, senderID)
	}

	return senderIDs, rows.Err()
}

// ListConversation pages the message history between identity and peerID,
// newest first, returning messages created strictly before the cursor.
func (r *Repo) ListConversation(ctx context.Context, identity, peerID string, before time.Time, limit int) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4`,
		identity, peerID, before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}

	return messages, rows.Err()
}

// RecentConversations computes identity's conversation list: for each distinct
// peer, the latest message preview plus the count of unread messages from that
// peer. This same snapshot backs both the REST listing and the realtime
// refresh pushed after every message mutation.
func (r *Repo) RecentConversations(ctx context.Context, identity string) ([]ConversationSummary, error) {
	rows, err := r.pool.Query(ctx, `
		WITH latest AS (
			SELECT DISTINCT ON (CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END)
				CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id,
				id, body, sender_id, created_at
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
			ORDER BY CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END, created_at DESC
		),
		unread AS (
			SELECT sender_id AS peer_id, count(*) AS unread_count
			FROM messages
			WHERE receiver_id = $1 AND read_at IS NULL AND deleted_at IS NULL
			GROUP BY sender_id
		)
		SELECT
			latest.peer_id::text,
			COALESCE(agents.display_name, ''),
			latest.id::text,
			latest.body,
			latest.sender_id::text,
			latest.created_at,
			COALESCE(unread.unread_count, 0)
		FROM latest
		LEFT JOIN unread ON unread.peer_id = latest.peer_id
		LEFT JOIN agents ON agents.id = latest.peer_id
		ORDER BY latest.created_at DESC`,
		identity,
	)
	if err != nil {
		return nil, fmt.Errorf("recent conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		err := rows.Scan(
			&s.PeerID, &s.PeerName, &s.LastMessageID, &s.LastMessageBody,
			&s.LastSenderID, &s.LastActivityAt, &s.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan conversation summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
