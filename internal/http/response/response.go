package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/survey-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// SubmitEnvelope is the body of both survey submission endpoints, success or not.
type SubmitEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Response any    `json:"response,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError prefers the client-facing message over the wrapped cause.
func RespondAPIError(c *gin.Context, ae *apierr.Error) {
	if ae.Message == "" {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: ae.Message,
			Code:    ae.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondSubmitted(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusOK, SubmitEnvelope{Success: true, Message: message, Response: payload})
}

func RespondSubmitFailed(c *gin.Context, ae *apierr.Error) {
	c.JSON(ae.Status, SubmitEnvelope{Success: false, Message: ae.Message, Code: ae.Code})
}
