package handler

import (
	"net/http"
	"strconv"

	"bingo-backend/internal/adapter/http/dto"
	"bingo-backend/internal/service"
	"bingo-backend/pkg/apperror"
	"bingo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// AvatarHandler handles avatar generation endpoints.
type AvatarHandler struct {
	avatarSvc *service.AvatarService
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(avatarSvc *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatarSvc: avatarSvc}
}

// Generate handles GET /api/avatar/generate/:user_id.
func (h *AvatarHandler) Generate(c *gin.Context) {
	userID := c.Param("user_id")
	style := c.Query("style")

	response.OK(c, gin.H{
		"user_id":    userID,
		"avatar_url": h.avatarSvc.AvatarURL(userID, style),
		"avatar":     h.avatarSvc.AvatarData(userID),
	})
}

// Variants handles GET /api/avatar/variants/:user_id.
func (h *AvatarHandler) Variants(c *gin.Context) {
	userID := c.Param("user_id")
	count, _ := strconv.Atoi(c.DefaultQuery("count", "5"))

	response.OK(c, gin.H{
		"user_id":  userID,
		"variants": h.avatarSvc.Variants(userID, count),
	})
}

// SVG handles GET /api/avatar/svg/:user_id. Returns raw SVG, not the JSON
// envelope.
func (h *AvatarHandler) SVG(c *gin.Context) {
	userID := c.Param("user_id")
	name := c.Query("name")

	svg := h.avatarSvc.SVGAvatar(userID, name)
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

// Ethiopian handles GET /api/avatar/ethiopian/:user_id.
func (h *AvatarHandler) Ethiopian(c *gin.Context) {
	userID := c.Param("user_id")

	response.OK(c, gin.H{
		"user_id":    userID,
		"avatar_url": h.avatarSvc.EthiopianAvatarURL(userID),
		"theme":      "ethiopian",
	})
}

// Initials handles POST /api/avatar/initials.
func (h *AvatarHandler) Initials(c *gin.Context) {
	var req dto.InitialsAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	response.OK(c, gin.H{
		"avatar_data": h.avatarSvc.InitialsAvatar(req.Name, req.UserID),
	})
}
