// Package handlers adapts the services to gin routes.
package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/domain/schema"
	"github.com/mamadbah2/livestock/internal/server/middleware"
	"github.com/mamadbah2/livestock/internal/service/auth"
	"github.com/mamadbah2/livestock/internal/service/export"
	"github.com/mamadbah2/livestock/internal/service/records"
	"github.com/mamadbah2/livestock/pkg/clients/weather"
)

// Options controls how failures are rendered.
type Options struct {
	// ExposeErrors adds the underlying error text to 500 responses.
	ExposeErrors bool
}

type base struct {
	opts   Options
	logger *zap.Logger
}

func newBase(opts Options, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{opts: opts, logger: logger}
}

// owner returns the authenticated owner or answers 401.
func (b base) owner(c *gin.Context) (records.Owner, bool) {
	owner, ok := middleware.OwnerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
	}
	return owner, ok
}

// bind decodes the JSON body into dst or answers 400.
func (b base) bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]schema.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			msg := "is invalid"
			if fe.Tag() == "required" {
				msg = "is required"
			}
			fields = append(fields, schema.FieldError{Field: fe.Field(), Message: msg})
		}
		b.fail(c, "", &schema.ValidationError{Fields: fields})
		return false
	}

	b.logger.Debug("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
	return false
}

// fail translates err into a status and message. label names the record
// family in not-found messages.
func (b base) fail(c *gin.Context, label string, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields})
	case errors.Is(err, records.ErrNotFound):
		if label == "" {
			label = "Record"
		}
		c.JSON(http.StatusNotFound, gin.H{"message": label + " not found"})
	case errors.Is(err, weather.ErrCityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "City not found"})
	case errors.Is(err, records.ErrNoOwner), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
	case errors.Is(err, export.ErrSheetsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google Sheets export is not configured"})
	default:
		b.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		body := gin.H{"message": "Server error"}
		if b.opts.ExposeErrors {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

var registerTagNames sync.Once

// UseJSONFieldNames makes binding errors report fields by their JSON key.
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
