package v1

import (
	"net/http"
	"strings"
	"time"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/usecase"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	candidateUC domain.CandidateUsecase
	enquiryUC   domain.EnquiryUsecase
	contactUC   domain.ContactUsecase
	accessUC    domain.AccessUsecase
}

// NewAdminHandler registers the admin dashboard routes. The group must
// carry the auth middleware and the admin role gate.
func NewAdminHandler(
	admin *gin.RouterGroup,
	candidateUC domain.CandidateUsecase,
	enquiryUC domain.EnquiryUsecase,
	contactUC domain.ContactUsecase,
	accessUC domain.AccessUsecase,
) {
	handler := &AdminHandler{
		candidateUC: candidateUC,
		enquiryUC:   enquiryUC,
		contactUC:   contactUC,
		accessUC:    accessUC,
	}

	// Candidates
	admin.GET("/candidates", handler.ListCandidates)
	admin.GET("/candidates/export", handler.ExportCandidates)
	admin.PUT("/candidates/:id", handler.UpdateCandidate)
	admin.DELETE("/candidates/:id", handler.DeleteCandidate)
	admin.GET("/candidates/:id/documents/:docType/url", handler.DocumentURL)
	admin.GET("/candidates/:id/documents/:docType", handler.DownloadDocument)

	// Enquiries and contact messages
	admin.GET("/enquiries", handler.ListEnquiries)
	admin.DELETE("/enquiries/:id", handler.DeleteEnquiry)
	admin.GET("/contact-messages", handler.ListContactMessages)
	admin.DELETE("/contact-messages/:id", handler.DeleteContactMessage)

	// Users
	admin.PUT("/users/:principal/role", handler.AssignRole)
	admin.GET("/users/:principal/profile", handler.GetUserProfile)
}

// ListCandidates godoc
// @Summary      List candidates
// @Description  All candidates in registration order, optionally filtered by trade (case-insensitive substring).
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        trade  query     string  false  "Trade filter"
// @Success      200    {object}  response.Response{data=[]domain.Candidate}
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /admin/candidates [get]
func (h *AdminHandler) ListCandidates(c *gin.Context) {
	var (
		candidates []domain.Candidate
		err        error
	)
	if trade := c.Query("trade"); trade != "" {
		candidates, err = h.candidateUC.ListByTrade(c, trade)
	} else {
		candidates, err = h.candidateUC.List(c)
	}
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates retrieved", candidates)
}

// ExportCandidates godoc
// @Summary      Export candidates to Excel
// @Tags         admin
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Success      200  {file}    binary
// @Failure      403  {object}  response.Response
// @Router       /admin/candidates/export [get]
func (h *AdminHandler) ExportCandidates(c *gin.Context) {
	data, err := h.candidateUC.Export(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Attachment(c, http.StatusOK, usecase.ExportFilename(time.Now()),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// UpdateCandidate godoc
// @Summary      Update a candidate's details
// @Description  Replaces the submitted fields; uploaded documents are kept.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      int                    true  "Candidate id"
// @Param        candidate  body      domain.CandidateInput  true  "Candidate fields"
// @Success      200        {object}  response.Response
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /admin/candidates/{id} [put]
func (h *AdminHandler) UpdateCandidate(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req domain.CandidateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.candidateUC.Update(c, id, &req); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate updated", nil)
}

// DeleteCandidate godoc
// @Summary      Delete a candidate and their documents
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Candidate id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/candidates/{id} [delete]
func (h *AdminHandler) DeleteCandidate(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.candidateUC.Delete(c, id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted", nil)
}

type documentURLResponse struct {
	URL string `json:"url"`
}

// DocumentURL godoc
// @Summary      Direct link to a candidate document
// @Description  Returns a short-lived URL served by the blob store.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int     true  "Candidate id"
// @Param        docType  path      string  true  "cv | idCopy | matricCert | qualificationCert"
// @Success      200      {object}  response.Response{data=documentURLResponse}
// @Failure      404      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /admin/candidates/{id}/documents/{docType}/url [get]
func (h *AdminHandler) DocumentURL(c *gin.Context) {
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
	url, err := h.candidateUC.DocumentURL(c, id, dt)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document URL", documentURLResponse{URL: url})
}

// DownloadDocument godoc
// @Summary      Download a candidate document
// @Tags         admin
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        id       path      int     true  "Candidate id"
// @Param        docType  path      string  true  "cv | idCopy | matricCert | qualificationCert"
// @Success      200      {file}    binary
// @Failure      404      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /admin/candidates/{id}/documents/{docType} [get]
func (h *AdminHandler) DownloadDocument(c *gin.Context) {
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
	content, err := h.candidateUC.DownloadDocument(c, id, dt)
	if err != nil {
		c.Error(err)
		return
	}
	response.Attachment(c, http.StatusOK, content.FileName, content.FileType, content.Data)
}

// ListEnquiries godoc
// @Summary      List enquiries
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Enquiry}
// @Failure      403  {object}  response.Response
// @Router       /admin/enquiries [get]
func (h *AdminHandler) ListEnquiries(c *gin.Context) {
	enquiries, err := h.enquiryUC.List(c)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Enquiries retrieved", enquiries)
}

// DeleteEnquiry godoc
// @Summary      Delete an enquiry
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Enquiry id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/enquiries/{id} [delete]
func (h *AdminHandler) DeleteEnquiry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.enquiryUC.Delete(c, id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Enquiry deleted", nil)
}

// ListContactMessages godoc
// @Summary      List contact messages
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.ContactMessage}
// @Failure      403  {object}  response.Response
// @Router       /admin/contact-messages [get]
func (h *AdminHandler) ListContactMessages(c *gin.Context) {
	messages, err := h.contactUC.List(c)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contact messages retrieved", messages)
}

// DeleteContactMessage godoc
// @Summary      Delete a contact message
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Message id"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/contact-messages/{id} [delete]
func (h *AdminHandler) DeleteContactMessage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.contactUC.Delete(c, id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contact message deleted", nil)
}

type assignRoleRequest struct {
	Role domain.Role `json:"role"`
}

// AssignRole godoc
// @Summary      Assign a role to a principal
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        principal  path      string             true  "Principal"
// @Param        role       body      assignRoleRequest  true  "Role"
// @Success      200        {object}  response.Response
// @Failure      400        {object}  response.Response
// @Router       /admin/users/{principal}/role [put]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(string(req.Role))))
	if err := h.accessUC.AssignRole(c, domain.Principal(c.Param("principal")), role); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role assigned", nil)
}

// GetUserProfile godoc
// @Summary      Read another user's profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        principal  path      string  true  "Principal"
// @Success      200        {object}  response.Response{data=domain.UserProfile}
// @Failure      404        {object}  response.Response
// @Router       /admin/users/{principal}/profile [get]
func (h *AdminHandler) GetUserProfile(c *gin.Context) {
	profile, err := h.accessUC.GetUserProfile(c, domain.Principal(c.Param("principal")))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile", profile)
}
