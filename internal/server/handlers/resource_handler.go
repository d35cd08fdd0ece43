package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/service/records"
)

// ResourceHandler serves the five CRUD verbs of one record family.
type ResourceHandler struct {
	base
	engine *records.Engine
	schema *schema.Schema
}

// NewResourceHandler constructs the handler for the family described by s.
func NewResourceHandler(engine *records.Engine, s *schema.Schema, opts Options, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{base: newBase(opts, logger), engine: engine, schema: s}
}

func (h *ResourceHandler) repo(c *gin.Context) (*records.Repository, bool) {
	owner, ok := h.owner(c)
	if !ok {
		return nil, false
	}
	repo, err := h.engine.For(owner, h.schema)
	if err != nil {
		h.fail(c, h.schema.Label, err)
		return nil, false
	}
	return repo, true
}

// List handles GET /.
func (h *ResourceHandler) List(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	q, err := h.schema.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	docs, err := repo.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Get handles GET /:id.
func (h *ResourceHandler) Get(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	doc, err := repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Create handles POST /.
func (h *ResourceHandler) Create(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	var payload map[string]any
	if !h.bind(c, &payload) {
		return
	}
	doc, err := repo.Create(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Update handles PUT /:id.
func (h *ResourceHandler) Update(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	var payload map[string]any
	if !h.bind(c, &payload) {
		return
	}
	doc, err := repo.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	if err := repo.Expand(c.Request.Context(), []repository.Document{doc}); err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /:id.
func (h *ResourceHandler) Delete(c *gin.Context) {
	repo, ok := h.repo(c)
	if !ok {
		return
	}
	if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, h.schema.Label, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.schema.Label + " deleted successfully"})
}
