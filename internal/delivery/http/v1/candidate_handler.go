package v1

import (
	"errors"
	"io"
	"net/http"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/metrics"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC    domain.CandidateUsecase
	maxUploadBytes int64
}

// NewCandidateHandler registers the public candidate intake routes.
func NewCandidateHandler(public *gin.RouterGroup, candidateUC domain.CandidateUsecase, maxUploadBytes int64, submitLimit, uploadLimit gin.HandlerFunc) {
	handler := &CandidateHandler{candidateUC: candidateUC, maxUploadBytes: maxUploadBytes}

	candidates := public.Group("/candidates")
	{
		candidates.POST("", submitLimit, handler.Register)
		candidates.POST("/:id/documents/:docType", uploadLimit, handler.UploadDocument)
	}
}

// Register godoc
// @Summary      Register as a candidate
// @Description  Public candidate registration. Documents are uploaded separately against the returned id.
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        candidate  body      domain.CandidateInput  true  "Candidate registration"
// @Success      201        {object}  response.Response{data=createdResponse}
// @Failure      400        {object}  response.Response
// @Failure      429        {object}  response.Response
// @Router       /candidates [post]
func (h *CandidateHandler) Register(c *gin.Context) {
	var req domain.CandidateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	id, err := h.candidateUC.Submit(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.IntakeTotal.WithLabelValues("candidate").Inc()
	response.Success(c, http.StatusCreated, "Registration received", createdResponse{ID: id})
}

// UploadDocument godoc
// @Summary      Upload a candidate document
// @Description  Stores one document in the given slot, replacing any earlier upload. CV accepts pdf/doc/docx; the other slots accept pdf or images.
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path      int     true  "Candidate id"
// @Param        docType  path      string  true  "cv | idCopy | matricCert | qualificationCert"
// @Param        file     formData  file    true  "Document"
// @Success      200      {object}  response.Response{data=domain.Document}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      413      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /candidates/{id}/documents/{docType} [post]
func (h *CandidateHandler) UploadDocument(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	dt, err := pathDocType(c)
	if err != nil {
		c.Error(err)
		return
	}

	// Multipart framing adds a little on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+64<<10)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(tooLargeError())
			return
		}
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	if file.Size > h.maxUploadBytes {
		c.Error(tooLargeError())
		return
	}

	src, err := file.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUploadBytes+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		c.Error(tooLargeError())
		return
	}

	doc, err := h.candidateUC.UploadDocument(c, id, dt, &domain.DocumentUpload{FileName: file.Filename, Data: data})
	if err != nil {
		c.Error(err)
		return
	}

	metrics.IntakeTotal.WithLabelValues("document").Inc()
	response.Success(c, http.StatusOK, "Document uploaded", doc)
}

func tooLargeError() error {
	return apperror.New(http.StatusRequestEntityTooLarge, apperror.KindValidation, "File is too large", nil)
}
