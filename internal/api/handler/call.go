package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/storage"
)

type CallHandler struct {
	repo    *storage.CallRepo
	rubrics *rubric.Store
	queue   *queue.RedisQueue
}

func NewCallHandler(repo *storage.CallRepo, rubrics *rubric.Store, q *queue.RedisQueue) *CallHandler {
	return &CallHandler{repo: repo, rubrics: rubrics, queue: q}
}

type IngestCallRequest struct {
	CallID        string             `json:"call_id,omitempty"`
	Project       string             `json:"project"`
	RubricVersion string             `json:"rubric_version,omitempty"`
	AgentName     string             `json:"agent_name,omitempty"`
	AudioFileName string             `json:"audio_file_name,omitempty"`
	Transcript    *domain.Transcript `json:"transcript"`
	Score         bool               `json:"score,omitempty"`
}

type IngestCallResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
	Queued bool   `json:"queued"`
}

// Ingest registers one call with its transcript and optionally queues it for
// scoring.
func (h *CallHandler) Ingest(c *gin.Context) {
	var req IngestCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Project) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project is required"})
		return
	}
	if req.Transcript == nil || strings.TrimSpace(req.Transcript.FullText()) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcript is required"})
		return
	}

	call := &domain.Call{
		ID:            req.CallID,
		Project:       req.Project,
		RubricVersion: req.RubricVersion,
		AgentName:     req.AgentName,
		AudioFileName: req.AudioFileName,
		Transcript:    req.Transcript,
		Status:        domain.CallStatusTranscribed,
	}

	if err := h.repo.Create(c.Request.Context(), call); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store call"})
		return
	}

	queued := false
	if req.Score {
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

func (h *CallHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	call, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve call"})
		return
	}
	if call == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}

	c.JSON(http.StatusOK, call)
}

func (h *CallHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	calls, err := h.repo.List(c.Request.Context(), c.Query("project"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list calls"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"calls": calls, "count": len(calls)})
}

type ScoreRequest struct {
	RubricVersion string `json:"rubric_version,omitempty"`
	Force         bool   `json:"force,omitempty"`
}

// Score queues one stored call for (re-)scoring.
func (h *CallHandler) Score(c *gin.Context) {
	id := c.Param("id")

	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	call, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve call"})
		return
	}
	if call == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}

	version := req.RubricVersion
	if version == "" {
		version = call.RubricVersion
	}
	if version != "" {
		if _, err := h.rubrics.Get(call.Project, version); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	job := &queue.ScoringJob{CallID: call.ID, Project: call.Project, RubricVersion: version, Force: req.Force}
	if err := h.queue.Publish(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue call for scoring"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"call_id": call.ID, "queued": true})
}
