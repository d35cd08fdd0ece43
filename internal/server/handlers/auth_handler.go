package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/service/auth"
)

// AuthHandler serves sign up, sign in and the current profile.
type AuthHandler struct {
	base
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service, opts Options, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(opts, logger), svc: svc}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var in auth.SignUpInput
	if !h.bind(c, &in) {
		return
	}
	session, err := h.svc.SignUp(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "User", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var in auth.SignInInput
	if !h.bind(c, &in) {
		return
	}
	session, err := h.svc.SignIn(c.Request.Context(), in)
	if err != nil {
		h.logger.Debug("sign in rejected", zap.Error(err))
		h.fail(c, "User", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	user, err := h.svc.Profile(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "User", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
