package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
)

type RubricHandler struct {
	store *rubric.Store
}

func NewRubricHandler(store *rubric.Store) *RubricHandler {
	return &RubricHandler{store: store}
}

// Get returns one loaded rubric.
func (h *RubricHandler) Get(c *gin.Context) {
	r, err := h.store.Get(c.Param("project"), c.Param("version"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// Versions lists the loaded versions for a project.
func (h *RubricHandler) Versions(c *gin.Context) {
	project := c.Param("project")
	c.JSON(http.StatusOK, gin.H{
		"project":  project,
		"versions": h.store.Versions(project),
	})
}
