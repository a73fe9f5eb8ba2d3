package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/survey-backend/internal/domain"
	"github.com/yungbote/survey-backend/internal/http/response"
	"github.com/yungbote/survey-backend/internal/modules/survey"
	"github.com/yungbote/survey-backend/internal/platform/apierr"
	"github.com/yungbote/survey-backend/internal/platform/logger"
	"github.com/yungbote/survey-backend/internal/services"
)

const (
	maxSubmitBody       = 1 << 20
	defaultWriteTimeout = 5 * time.Second

	msgStudentSaved   = "تم حفظ استبيان الطالب بنجاح"
	msgProfessorSaved = "تم حفظ استبيان الهيئة التدريسية بنجاح"
	msgSaveFailed     = "خطأ في حفظ البيانات"
	msgResultsFailed  = "خطأ في قراءة النتائج"
	msgStatsFailed    = "خطأ في قراءة الإحصائيات"
)

type SurveyHandler struct {
	log          *logger.Logger
	survey       services.SurveyService
	writeTimeout time.Duration
}

func NewSurveyHandler(log *logger.Logger, svc services.SurveyService, writeTimeout time.Duration) *SurveyHandler {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &SurveyHandler{
		log:          log.With("handler", "SurveyHandler"),
		survey:       svc,
		writeTimeout: writeTimeout,
	}
}

// POST /api/survey/student
func (h *SurveyHandler) SubmitStudent(c *gin.Context) {
	h.submit(c, types.RoleStudent, msgStudentSaved)
}

// POST /api/survey/professor
func (h *SurveyHandler) SubmitProfessor(c *gin.Context) {
	h.submit(c, types.RoleProfessor, msgProfessorSaved)
}

func (h *SurveyHandler) submit(c *gin.Context, role types.Role, okMessage string) {
	fields, ae := readFields(c)
	if ae != nil {
		h.log.Warn("Rejected survey body", "role", role, "client_ip", c.ClientIP(), "error", ae.Err)
		response.RespondSubmitFailed(c, ae.WithMessage(msgSaveFailed))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.writeTimeout)
	defer cancel()

	resp, err := h.survey.Submit(ctx, role, fields)
	if err != nil {
		h.log.Error("Saving survey response failed", "role", role, "client_ip", c.ClientIP(), "error", err)
		response.RespondSubmitFailed(c, toAPIError(err).WithMessage(msgSaveFailed))
		return
	}
	response.RespondSubmitted(c, okMessage, resp)
}

// GET /api/results
func (h *SurveyHandler) Results(c *gin.Context) {
	set, sum, err := h.survey.Results(c.Request.Context())
	if err != nil {
		h.log.Error("Reading survey results failed", "error", err)
		response.RespondAPIError(c, toAPIError(err).WithMessage(msgResultsFailed))
		return
	}
	response.RespondOK(c, types.Document{ResponseSet: set, Summary: sum})
}

// GET /api/stats
func (h *SurveyHandler) Stats(c *gin.Context) {
	stats, err := h.survey.Stats(c.Request.Context())
	if err != nil {
		h.log.Error("Reading survey stats failed", "error", err)
		response.RespondAPIError(c, toAPIError(err).WithMessage(msgStatsFailed))
		return
	}
	response.RespondOK(c, stats)
}

// readFields accepts a JSON object or a urlencoded form. An empty body is an empty response.
func readFields(c *gin.Context) (types.Fields, *apierr.Error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmitBody)

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := c.Request.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		fields := types.Fields{}
		for key, vals := range c.Request.PostForm {
			if len(vals) > 0 {
				fields[key] = types.StringValue(vals[0])
			}
		}
		return fields, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return types.Fields{}, nil
	}
	var fields types.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("decode body: %w", err))
	}
	if fields == nil {
		// a literal null body
		fields = types.Fields{}
	}
	return fields, nil
}

func bodyError(err error) *apierr.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.New(http.StatusRequestEntityTooLarge, "body_too_large", err)
	}
	return apierr.New(http.StatusBadRequest, "invalid_body", err)
}

func toAPIError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return apierr.New(ae.Status, ae.Code, ae.Err)
	}
	code := survey.Code(err)
	switch survey.KindOf(err) {
	case survey.ErrValidation:
		return apierr.New(http.StatusBadRequest, code, err)
	case survey.ErrStorageUnavailable:
		return apierr.New(http.StatusServiceUnavailable, code, err)
	default:
		return apierr.New(http.StatusInternalServerError, code, err)
	}
}
