package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/emotion"
)

// EmotionHandler proxies ad-hoc classification requests to the emotion
// services, mainly for the ingestion pipeline and manual spot checks.
type EmotionHandler struct {
	client *emotion.Client
}

func NewEmotionHandler(client *emotion.Client) *EmotionHandler {
	return &EmotionHandler{client: client}
}

type detectTextRequest struct {
	Text       string `json:"text" binding:"required"`
	SegmentRef int    `json:"segment_ref"`
}

func (h *EmotionHandler) DetectText(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "emotion services are not configured"})
		return
	}

	var req detectTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	sig, err := h.client.DetectText(c.Request.Context(), req.SegmentRef, req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if sig == nil {
		c.JSON(http.StatusOK, gin.H{"signal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signal": sig})
}

// ClassifyAudio accepts a raw audio slice and returns the audio model's
// emotion estimate for it.
func (h *EmotionHandler) ClassifyAudio(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "emotion services are not configured"})
		return
	}

	segmentRef, _ := strconv.Atoi(c.Query("segment_ref"))
	start, _ := strconv.ParseFloat(c.Query("start_time"), 64)
	end, _ := strconv.ParseFloat(c.Query("end_time"), 64)

	audio, err := io.ReadAll(io.LimitReader(c.Request.Body, 32<<20))
	if err != nil || len(audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio body is required"})
		return
	}

	sig, err := h.client.ClassifyAudio(c.Request.Context(), segmentRef, audio, start, end)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if sig == nil {
		c.JSON(http.StatusOK, gin.H{"signal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signal": sig})
}
