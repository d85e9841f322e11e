package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"graphrag/internal/queue"
	"graphrag/internal/server/middleware"
	"graphrag/internal/storage"
	"graphrag/pkg/logger"
)

// AcceptedDocument describes one upload that was queued for ingestion.
type AcceptedDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileKey  string `json:"file_key"`
}

// UploadDocumentsHandler accepts multipart uploads, stores each file in
// object storage, and queues an ingest job per file. Ingestion itself is
// asynchronous; the response only confirms acceptance.
func UploadDocumentsHandler(c echo.Context) error {
	type uploadResponse struct {
		Message   string             `json:"message"`
		Documents []AcceptedDocument `json:"documents,omitempty"`
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "No files provided",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	accepted := make([]AcceptedDocument, 0, len(uploads))
	for _, upload := range uploads {
		src, err := upload.Open()
		if err != nil {
			logger.Error("Failed to open upload", "file", upload.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		id, err := gonanoid.New()
		if err != nil {
			src.Close()
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		key, err := storage.PutFile(ctx, app.S3, app.Bucket, id, upload.Filename, src)
		src.Close()
		if err != nil {
			logger.Error("Failed to store upload", "file", upload.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Failed to store file",
			})
		}

		job := queue.IngestJobMsg{
			DocumentID: id,
			FileKey:    key,
			FileName:   upload.Filename,
		}
		msgBytes, err := json.Marshal(job)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Internal server error",
			})
		}

		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
			logger.Error("Failed to queue ingest job", "document_id", id, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Failed to queue document",
			})
		}

		accepted = append(accepted, AcceptedDocument{
			ID:       id,
			FileName: upload.Filename,
			FileKey:  key,
		})
	}

	return c.JSON(http.StatusAccepted, uploadResponse{
		Message:   "Documents queued for ingestion",
		Documents: accepted,
	})
}
