package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/service/export"
)

// ExportHandler serves POST /api/export (Google Sheets) and GET /api/export
// (XLSX download).
type ExportHandler struct {
	base
	svc *export.Service
}

func NewExportHandler(svc *export.Service, opts Options, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{base: newBase(opts, logger), svc: svc}
}

func (h *ExportHandler) Export(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var req export.Request
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.Export(c.Request.Context(), owner, req)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ExportHandler) Download(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	resource := strings.Trim(c.Query("resource"), "/")

	var buf bytes.Buffer
	if _, err := h.svc.Workbook(c.Request.Context(), owner, resource, &buf); err != nil {
		h.fail(c, "", err)
		return
	}

	name := strings.ReplaceAll(resource, "/", "-") + ".xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.XLSXContentType, buf.Bytes())
}
