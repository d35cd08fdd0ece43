package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/service/reporting"
)

// ReportHandler serves the aggregate endpoints.
type ReportHandler struct {
	base
	svc *reporting.Service
}

func NewReportHandler(svc *reporting.Service, opts Options, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{base: newBase(opts, logger), svc: svc}
}

// FinanceSummary handles GET /api/finance/summary?startDate=&endDate=.
func (h *ReportHandler) FinanceSummary(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	values := c.Request.URL.Query()
	from, err := schema.DateParam(values, "startDate", false)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	to, err := schema.DateParam(values, "endDate", true)
	if err != nil {
		h.fail(c, "", err)
		return
	}

	summary, err := h.svc.FinanceSummary(c.Request.Context(), owner, from, to)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// LowStock handles GET /api/inventory/low-stock.
func (h *ReportHandler) LowStock(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	items, err := h.svc.LowStock(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Dashboard handles GET /api/scheduler/dashboard/summary.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	d, err := h.svc.SchedulerDashboard(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Upcoming handles GET /api/scheduler/upcoming/list.
func (h *ReportHandler) Upcoming(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	docs, err := h.svc.UpcomingReminders(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Complete handles PUT /api/scheduler/:id/complete.
func (h *ReportHandler) Complete(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	doc, err := h.svc.CompleteReminder(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		h.fail(c, "Reminder", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Cities handles GET /api/environment/cities/list.
func (h *ReportHandler) Cities(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	cities, err := h.svc.Cities(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.JSON(http.StatusOK, cities)
}
