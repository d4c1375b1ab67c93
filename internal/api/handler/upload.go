package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/storage"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/transcribe"
)

// UploadHandler accepts raw call audio, transcribes it synchronously and
// registers the resulting call.
type UploadHandler struct {
	repo        *storage.CallRepo
	transcriber *transcribe.Client
	queue       *queue.RedisQueue
}

func NewUploadHandler(repo *storage.CallRepo, transcriber *transcribe.Client, q *queue.RedisQueue) *UploadHandler {
	return &UploadHandler{repo: repo, transcriber: transcriber, queue: q}
}

// Upload handles multipart form uploads: an "audio" file plus project
// metadata. Set score=true to queue the call immediately after transcription.
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription is not configured"})
		return
	}

	project := strings.TrimSpace(c.PostForm("project"))
	if project == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project is required"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read audio file"})
		return
	}
	defer file.Close()

	transcript, err := h.transcriber.Transcribe(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	call := &domain.Call{
		Project:       project,
		RubricVersion: c.PostForm("rubric_version"),
		AgentName:     c.PostForm("agent_name"),
		AudioFileName: fileHeader.Filename,
		Transcript:    transcript,
		Status:        domain.CallStatusTranscribed,
	}
	if err := h.repo.Create(c.Request.Context(), call); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store call"})
		return
	}

	queued := false
	if c.PostForm("score") == "true" {
		job := &queue.ScoringJob{CallID: call.ID, Project: call.Project, RubricVersion: call.RubricVersion}
		if err := h.queue.Publish(c.Request.Context(), job); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue call for scoring"})
			return
		}
		queued = true
	}

	c.JSON(http.StatusAccepted, IngestCallResponse{
		CallID: call.ID,
		Status: string(call.Status),
		Queued: queued,
	})
}
