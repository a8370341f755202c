package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskhub/internal/pkg/errs"
)

// The validation layer rejects bad input before the repository is touched, so
// these tests run against a nil repo: reaching it would panic and fail loudly.

func TestServiceSendRejectsInvalidInput(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		senderID    string
		receiverID  string
		body        string
		attachments []Attachment
		wantCode    int
	}{
		{
			name:       "empty receiver",
			senderID:   "a1",
			receiverID: "",
			body:       "hi",
			wantCode:   errs.ErrInvalidParams,
		},
		{
			name:       "message to self",
			senderID:   "a1",
			receiverID: "a1",
			body:       "hi",
			wantCode:   errs.ErrInvalidParams,
		},
		{
			name:       "empty body without attachments",
			senderID:   "a1",
			receiverID: "a2",
			body:       "",
			wantCode:   errs.ErrInvalidParams,
		},
		{
			name:       "body over size limit",
			senderID:   "a1",
			receiverID: "a2",
			body:       strings.Repeat("x", MaxBodyBytes+1),
			wantCode:   errs.ErrMessageBodyTooLong,
		},
		{
			name:       "too many attachments",
			senderID:   "a1",
			receiverID: "a2",
			body:       "hi",
			attachments: []Attachment{
				{Key: "k1", Name: "a.png", MimeType: "image/png", Size: 10},
				{Key: "k2", Name: "b.png", MimeType: "image/png", Size: 10},
				{Key: "k3", Name: "c.png", MimeType: "image/png", Size: 10},
				{Key: "k4", Name: "d.png", MimeType: "image/png", Size: 10},
			},
			wantCode: errs.ErrAttachmentCountInvalid,
		},
		{
			name:       "attachment with bad type",
			senderID:   "a1",
			receiverID: "a2",
			body:       "hi",
			attachments: []Attachment{
				{Key: "k1", Name: "tool.exe", MimeType: "application/octet-stream", Size: 10},
			},
			wantCode: errs.ErrInvalidParams,
		},
		{
			name:       "attachment too large",
			senderID:   "a1",
			receiverID: "a2",
			body:       "hi",
			attachments: []Attachment{
				{Key: "k1", Name: "a.png", MimeType: "image/png", Size: MaxAttachmentSize + 1},
			},
			wantCode: errs.ErrFileSizeTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := svc.Send(ctx, tt.senderID, tt.receiverID, tt.body, tt.attachments)
			assert.Nil(t, msg)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestServiceEditRejectsInvalidBody(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()

	msg, err := svc.Edit(ctx, "m1", "a1", "")
	assert.Nil(t, msg)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)

	msg, err = svc.Edit(ctx, "m1", "a1", strings.Repeat("x", MaxBodyBytes+1))
	assert.Nil(t, msg)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrMessageBodyTooLong, err.Code)
}

func TestServiceHistoryRejectsEmptyPeer(t *testing.T) {
	svc := NewService(nil, nil)

	messages, err := svc.History(context.Background(), "a1", "", time.Time{}, 0)
	assert.Nil(t, messages)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)
}
