package routes

import (
	"errors"
	"net/http"

	"helpdesk-suggestion-engine/internal/ai"
	"helpdesk-suggestion-engine/services"
	"helpdesk-suggestion-engine/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type suggestRequest struct {
	TicketID    string `json:"ticket_id" binding:"required"`
	Question    string `json:"question" binding:"required"`
	CourseScope string `json:"course_scope"`
}

type viewedRequest struct {
	EntryID string `json:"entry_id" binding:"required"`
}

type feedbackRequest struct {
	EntryID   string `json:"entry_id" binding:"required"`
	StudentID string `json:"student_id"`
	IsHelpful *bool  `json:"is_helpful" binding:"required"`
}

func SetupSuggestionRoutes(router *gin.Engine, suggestions *services.SuggestionService, feedback *services.FeedbackService) {
	group := router.Group("/suggestions")

	group.POST("", func(c *gin.Context) {
		var req suggestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		results, err := suggestions.SuggestForTicket(c.Request.Context(), req.TicketID, req.Question, req.CourseScope)
		if err != nil {
			var embErr *ai.EmbeddingError
			if errors.As(err, &embErr) && embErr.Status == http.StatusBadRequest {
				utils.RespondWithBadRequest(c, embErr.Message, nil)
				return
			}
			utils.RespondWithUpstreamError(c, "Failed to compute suggestions")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ticket_id":   req.TicketID,
			"suggestions": results,
			"count":       len(results),
		})
	})

	group.POST("/:ticket_id/viewed", func(c *gin.Context) {
		var req viewedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if err := feedback.MarkViewed(c.Request.Context(), c.Param("ticket_id"), req.EntryID); err != nil {
			utils.RespondWithBadRequest(c, "Failed to mark suggestion as viewed", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "viewed"})
	})

	group.POST("/:ticket_id/feedback", func(c *gin.Context) {
		var req feedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		err := feedback.Rate(c.Request.Context(), c.Param("ticket_id"), req.EntryID, req.StudentID, *req.IsHelpful)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondWithNotFound(c, "Knowledge entry not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to record feedback", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	})
}
