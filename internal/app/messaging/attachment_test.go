package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskhub/internal/pkg/errs"
)

func TestValidateAttachmentSize(t *testing.T) {
	assert.Nil(t, ValidateAttachmentSize(1))
	assert.Nil(t, ValidateAttachmentSize(MaxAttachmentSize))

	err := ValidateAttachmentSize(0)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)

	err = ValidateAttachmentSize(-5)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)

	err = ValidateAttachmentSize(MaxAttachmentSize + 1)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrFileSizeTooLarge, err.Code)
}

func TestValidateAttachmentType(t *testing.T) {
	assert.Nil(t, ValidateAttachmentType("photo.jpg", "image/jpeg"))
	assert.Nil(t, ValidateAttachmentType("photo.JPEG", "IMAGE/JPEG"))
	assert.Nil(t, ValidateAttachmentType("report.pdf", "application/pdf"))
	assert.Nil(t, ValidateAttachmentType("server.log", "text/plain"))

	tests := []struct {
		name     string
		fileName string
		mimeType string
	}{
		{"disallowed mime", "payload.exe", "application/octet-stream"},
		{"missing extension", "photo", "image/jpeg"},
		{"unknown extension", "archive.rar", "image/jpeg"},
		{"extension mime mismatch", "photo.png", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttachmentType(tt.fileName, tt.mimeType)
			require.NotNil(t, err)
			assert.Equal(t, errs.ErrInvalidParams, err.Code)
		})
	}
}
