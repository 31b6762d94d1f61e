package v1

import (
	"net/http"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/metrics"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, submitLimit gin.HandlerFunc) {
	handler := &ContactHandler{contactUC: contactUC}

	public.POST("/contact", submitLimit, handler.SubmitContact)
	public.GET("/contact-info", handler.GetContactInfo)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Leave a message for the agency. This is a public endpoint.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactInput  true  "Contact Form Data"
// @Success      201      {object}  response.Response{data=createdResponse}
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	id, err := h.contactUC.Submit(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.IntakeTotal.WithLabelValues("contact_message").Inc()
	response.Success(c, http.StatusCreated, "Your message has been sent successfully!", createdResponse{ID: id})
}

// GetContactInfo godoc
// @Summary      Agency contact details
// @Tags         contact
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.PublicContactInfo}
// @Router       /contact-info [get]
func (h *ContactHandler) GetContactInfo(c *gin.Context) {
	response.Success(c, http.StatusOK, "Contact information", h.contactUC.PublicContactInfo(c))
}
