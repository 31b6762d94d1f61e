package v1

import (
	"net/http"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/metrics"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type EnquiryHandler struct {
	enquiryUC domain.EnquiryUsecase
}

func NewEnquiryHandler(public *gin.RouterGroup, enquiryUC domain.EnquiryUsecase, submitLimit gin.HandlerFunc) {
	handler := &EnquiryHandler{enquiryUC: enquiryUC}
	public.POST("/enquiries", submitLimit, handler.Submit)
}

// Submit godoc
// @Summary      Submit a hiring enquiry
// @Tags         enquiries
// @Accept       json
// @Produce      json
// @Param        enquiry  body      domain.EnquiryInput  true  "Enquiry"
// @Success      201      {object}  response.Response{data=createdResponse}
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /enquiries [post]
func (h *EnquiryHandler) Submit(c *gin.Context) {
	var req domain.EnquiryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	id, err := h.enquiryUC.Submit(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.IntakeTotal.WithLabelValues("enquiry").Inc()
	response.Success(c, http.StatusCreated, "Thank you, we will be in touch shortly", createdResponse{ID: id})
}
