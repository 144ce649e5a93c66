package routes

import (
	"io"
	"net/http"
	"strings"

	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/queue"
	"helpdesk-suggestion-engine/services"
	"helpdesk-suggestion-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

const maxUploadSize = 20 << 20 // 20 MB

func SetupDocumentRoutes(router *gin.Engine, ingestion *services.IngestionService, extractor *services.DocumentExtractor, asynqClient *asynq.Client) {
	group := router.Group("/documents")

	// Upload a document; chunking and embedding run in the background
	group.POST("", func(c *gin.Context) {
		title := strings.TrimSpace(c.PostForm("title"))
		if title == "" {
			utils.RespondWithBadRequest(c, "title is required", nil)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "file is required", gin.H{"error": err.Error()})
			return
		}
		if fileHeader.Size > maxUploadSize {
			utils.RespondWithBadRequest(c, "file too large", gin.H{"max_bytes": maxUploadSize})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}

		text, err := extractor.ExtractText(content, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to extract document text", gin.H{"error": err.Error()})
			return
		}

		metadata := map[string]string{"filename": fileHeader.Filename}

		var task *asynq.Task
		if c.Query("replace") == "true" {
			task, err = queue.NewReingestDocumentTask(title, text, metadata)
		} else {
			task, err = queue.NewIngestDocumentTask(title, text, metadata)
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create ingestion task", nil)
			return
		}

		info, err := asynqClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion", gin.H{"error": err.Error()})
			return
		}

		logger.Info("Document queued for ingestion", "title", title, "task_id", info.ID)
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "queued",
			"title":   title,
			"task_id": info.ID,
		})
	})

	group.GET("", func(c *gin.Context) {
		docs, err := ingestion.ListDocuments(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
	})

	group.DELETE("/:title", func(c *gin.Context) {
		deleted, err := ingestion.DeleteDocument(c.Request.Context(), c.Param("title"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete document", nil)
			return
		}
		if deleted == 0 {
			utils.RespondWithNotFound(c, "Document not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "chunks_removed": deleted})
	})
}
