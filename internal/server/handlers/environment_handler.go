package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/pkg/clients/weather"
)

// ForecastHandler serves GET /api/environment/forecast/:city.
type ForecastHandler struct {
	base
	client weather.Client
}

// NewForecastHandler wires the handler. A nil client disables the route.
func NewForecastHandler(client weather.Client, opts Options, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{base: newBase(opts, logger), client: client}
}

func (h *ForecastHandler) Forecast(c *gin.Context) {
	if _, ok := h.owner(c); !ok {
		return
	}
	if h.client == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"message": "Weather forecast is not enabled"})
		return
	}

	city := strings.TrimSpace(c.Param("city"))
	forecast, err := h.client.Forecast(c.Request.Context(), city)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, forecast)
	case errors.Is(err, weather.ErrCityNotFound):
		h.fail(c, "", err)
	default:
		h.logger.Warn("weather provider failed", zap.String("city", city), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "Weather provider unavailable"})
	}
}
