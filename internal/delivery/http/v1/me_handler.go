package v1

import (
	"net/http"

	"handyman-recruitment-backend/internal/delivery/http/response"
	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	accessUC domain.AccessUsecase
}

// NewMeHandler registers the caller-identity routes. The group must carry
// the auth middleware.
func NewMeHandler(authed *gin.RouterGroup, accessUC domain.AccessUsecase) {
	handler := &MeHandler{accessUC: accessUC}

	me := authed.Group("/me")
	{
		me.GET("/role", handler.GetRole)
		me.GET("/is-admin", handler.IsAdmin)
		me.GET("/profile", handler.GetProfile)
		me.PUT("/profile", handler.SaveProfile)
	}
}

type roleResponse struct {
	Role domain.Role `json:"role"`
}

type isAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// GetRole godoc
// @Summary      Caller role
// @Description  Resolves the caller's role from the role store. Unknown callers are guests.
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=roleResponse}
// @Failure      401  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /me/role [get]
func (h *MeHandler) GetRole(c *gin.Context) {
	role, err := h.accessUC.CallerRole(c)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Caller role", roleResponse{Role: role})
}

// IsAdmin godoc
// @Summary      Whether the caller is an admin
// @Description  Never fails; any lookup problem reports false.
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=isAdminResponse}
// @Router       /me/is-admin [get]
func (h *MeHandler) IsAdmin(c *gin.Context) {
	response.Success(c, http.StatusOK, "Admin check", isAdminResponse{IsAdmin: h.accessUC.IsCallerAdmin(c)})
}

// GetProfile godoc
// @Summary      Caller profile
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.UserProfile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /me/profile [get]
func (h *MeHandler) GetProfile(c *gin.Context) {
	profile, err := h.accessUC.GetCallerProfile(c)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile", profile)
}

// SaveProfile godoc
// @Summary      Save caller profile
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      domain.UserProfile  true  "Profile"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /me/profile [put]
func (h *MeHandler) SaveProfile(c *gin.Context) {
	var req domain.UserProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.accessUC.SaveCallerProfile(c, &req); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile saved", nil)
}
