package handler

import (
	"errors"

	"bingo-backend/internal/adapter/http/dto"
	"bingo-backend/internal/adapter/http/middleware"
	"bingo-backend/internal/core/ports"
	"bingo-backend/internal/service"
	"bingo-backend/pkg/apperror"
	"bingo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const appVersion = "2.0.0"

// AppHandler handles app configuration and user profile endpoints.
type AppHandler struct {
	userRepo       ports.UserRepository
	translationSvc *service.TranslationService
	avatarSvc      *service.AvatarService
}

// NewAppHandler creates a new AppHandler.
func NewAppHandler(userRepo ports.UserRepository, translationSvc *service.TranslationService, avatarSvc *service.AvatarService) *AppHandler {
	return &AppHandler{
		userRepo:       userRepo,
		translationSvc: translationSvc,
		avatarSvc:      avatarSvc,
	}
}

// Config handles GET /api/config.
func (h *AppHandler) Config(c *gin.Context) {
	styles := h.avatarSvc.Styles()
	if len(styles) > 10 {
		styles = styles[:10]
	}

	response.OK(c, gin.H{
		"features": gin.H{
			"multilingual": true,
			"avatars":      true,
			"payments":     true,
		},
		"languages":        h.translationSvc.LanguageNames(),
		"default_language": h.translationSvc.DefaultLanguage(),
		"avatar_styles":    styles,
		"payment_methods":  []string{"chapa"},
		"version":          appVersion,
	})
}

// UpdateEmail handles POST /api/user/update-email. Callers may only update
// their own record.
func (h *AppHandler) UpdateEmail(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.userRepo.UpdateEmail(c.Request.Context(), uid, req.Email); err != nil {
		if errors.Is(err, ports.ErrUserMissing) {
			response.Error(c, apperror.ErrUserNotFound())
			return
		}
		response.Error(c, apperror.InternalError(err))
		return
	}

	response.OK(c, gin.H{
		"user_id": uid,
		"email":   req.Email,
	})
}
