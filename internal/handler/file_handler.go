/*
Package handler provides HTTP handler functions for attachment upload and download.

Files never pass through this server: clients upload and download directly against
object storage using short-lived presigned URLs scoped to the caller's namespace.
*/
package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"deskhub/internal/app/messaging"
	"deskhub/internal/pkg/errs"
	"deskhub/internal/pkg/req"
	"deskhub/internal/pkg/resp"
)

// PresignUploadInput defines the JSON input structure for generating an upload URL.
type PresignUploadInput struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// HandlePresignUpload generates a time-limited presigned URL for uploading one
// attachment into the caller's own key namespace.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, authErr := requireAgent(r)
		if authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := messaging.ValidateAttachmentSize(input.FileSize); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if err := messaging.ValidateAttachmentType(input.FileName, input.MimeType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(input.FileName))
		fileKey := fmt.Sprintf("dm/%s/%s%s", payload.ID, uuid.New().String(), fileExt)

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			messaging.PresignedURLDuration,
		)

		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
			"fileKey":      fileKey,
			"fileName":     input.FileName,
		})
	}
}

// HandlePresignDownload generates a time-limited presigned URL for downloading
// an attachment by key. Any authenticated agent may fetch any "dm/" key; the
// key itself is only discoverable through a message the caller is a party to.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, authErr := requireAgent(r); authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		fileKey := r.URL.Query().Get("key")
		if fileKey == "" || !strings.HasPrefix(fileKey, "dm/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentKeyInvalid))
			return
		}

		url, err := deps.StorageService.PresignDownload(r.Context(), fileKey, messaging.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"presignedUrl": url,
		})
	}
}
