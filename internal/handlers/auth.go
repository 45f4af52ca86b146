package handlers

import (
	"errors"
	"net/http"

	"lightsensord/internal/service"

	"github.com/gin-gonic/gin"
)

// operatorCredentials is the body of both sign-up and sign-in.
type operatorCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const (
	errOperatorExists     = "operator already exists"
	errInvalidCredentials = "invalid credentials"
	errSignIn             = "failed to sign in"
)

// bindCredentials writes a 400 and returns false when the body is unusable.
func (h *Handler) bindCredentials(c *gin.Context) (operatorCredentials, bool) {
	var in operatorCredentials
	if err := c.ShouldBindJSON(&in); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}
	return in, true
}

// @Summary      Register an operator
// @Description  Operators may drive the sensor; their ID is recorded on the events they cause.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      201   {object}  map[string]int       "id"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	id, err := h.services.SignUp(in.Username, in.Password)
	switch {
	case errors.Is(err, service.ErrOperatorExists):
		c.JSON(http.StatusConflict, gin.H{"error": errOperatorExists})
		return
	case err != nil:
		if h.log != nil {
			h.log.Infow("auth_sign_up_failed", "username", in.Username, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.log != nil {
		h.log.Infow("operator_registered", "operator_id", id, "username", in.Username)
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Issue a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string    "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.services.GenerateToken(in.Username, in.Password)
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidPassword):
		if h.log != nil {
			h.log.Infow("auth_sign_in_rejected", "username", in.Username)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errSignIn, "auth_sign_in_failed", err, "username", in.Username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
