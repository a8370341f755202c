/*
Package messaging implements direct messages between staff members: persistence,
mutation rules, and the recent-conversations snapshot used by both the REST surface
and the realtime refresh pushes.
*/
package messaging

import (
	"encoding/json"
	"time"
)

// Message is one direct message between two agents. Fields use JSON tags for
// serialization both in REST responses and in realtime event payloads.
type Message struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"senderId"`
	ReceiverID  string       `json:"receiverId"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	EditedAt    *time.Time   `json:"editedAt,omitempty"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`
	ReadAt      *time.Time   `json:"readAt,omitempty"`
}

// Attachment references an uploaded file attached to a message. The file body
// lives in object storage; only the key and display metadata are persisted.
type Attachment struct {
	Key      string `json:"fileKey"`
	Name     string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"fileSize"`
}

// ConversationSummary is one row of an agent's recent-conversations list: the
// peer, the latest message preview, and the unread count. It is recomputed
// from the message store on demand, never cached.
type ConversationSummary struct {
	PeerID          string    `json:"peerId"`
	PeerName        string    `json:"peerName"`
	LastMessageID   string    `json:"lastMessageId"`
	LastMessageBody string    `json:"lastMessageBody"`
	LastSenderID    string    `json:"lastSenderId"`
	LastActivityAt  time.Time `json:"lastActivityAt"`
	UnreadCount     int       `json:"unreadCount"`
}

// encodeAttachments serializes attachments for the jsonb column. A nil slice
// is stored as SQL NULL rather than the JSON literal "null".
func encodeAttachments(attachments []Attachment) ([]byte, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	return json.Marshal(attachments)
}

// decodeAttachments parses the jsonb column back into the attachments slice.
func decodeAttachments(raw []byte) ([]Attachment, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var attachments []Attachment
	if err := json.Unmarshal(raw, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}
