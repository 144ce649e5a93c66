package routes

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"helpdesk-suggestion-engine/models"
	"helpdesk-suggestion-engine/services"
	"helpdesk-suggestion-engine/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type knowledgeEntryRequest struct {
	QuestionText string   `json:"question_text" binding:"required"`
	AnswerText   string   `json:"answer_text" binding:"required"`
	CourseScope  string   `json:"course_scope"`
	Tags         []string `json:"tags"`
}

func SetupKnowledgeRoutes(router *gin.Engine, knowledge *services.KnowledgeService) {
	group := router.Group("/knowledge")

	group.POST("", func(c *gin.Context) {
		var req knowledgeEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		entry := &models.KnowledgeEntry{
			QuestionText: req.QuestionText,
			AnswerText:   req.AnswerText,
			CourseScope:  req.CourseScope,
			Tags:         req.Tags,
		}

		id, err := knowledge.CreateEntry(c.Request.Context(), entry)
		if err != nil {
			utils.RespondWithUpstreamError(c, "Failed to create knowledge entry")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
	})

	group.GET("", func(c *gin.Context) {
		entries, err := knowledge.ListEntries(c.Request.Context(), c.Query("course_scope"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list knowledge entries", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
	})

	// Export must register before /:id so "export" never binds as an ID
	group.GET("/export", func(c *gin.Context) {
		entries, err := knowledge.ListEntries(c.Request.Context(), c.Query("course_scope"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load knowledge entries", nil)
			return
		}

		workbook, err := services.BuildKnowledgeWorkbook(entries)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build export", nil)
			return
		}

		filename := fmt.Sprintf("knowledge-base-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		if _, err := workbook.WriteTo(c.Writer); err != nil {
			utils.RespondWithInternalError(c, "Failed to stream export", nil)
		}
	})

	group.GET("/:id", func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid entry ID", nil)
			return
		}

		entry, err := knowledge.GetEntry(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondWithNotFound(c, "Knowledge entry not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load knowledge entry", nil)
			return
		}

		c.JSON(http.StatusOK, entry)
	})

	group.PUT("/:id", func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid entry ID", nil)
			return
		}

		var req knowledgeEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		err = knowledge.UpdateEntry(c.Request.Context(), id, req.QuestionText, req.AnswerText, req.CourseScope, req.Tags)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondWithNotFound(c, "Knowledge entry not found")
				return
			}
			utils.RespondWithUpstreamError(c, "Failed to update knowledge entry")
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	})

	group.DELETE("/:id", func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid entry ID", nil)
			return
		}

		if err := knowledge.DeleteEntry(c.Request.Context(), id); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondWithNotFound(c, "Knowledge entry not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to delete knowledge entry", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}
