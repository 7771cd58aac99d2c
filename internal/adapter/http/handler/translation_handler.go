package handler

import (
	"bingo-backend/internal/adapter/http/dto"
	"bingo-backend/internal/service"
	"bingo-backend/pkg/apperror"
	"bingo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TranslationHandler handles localization endpoints.
type TranslationHandler struct {
	translationSvc *service.TranslationService
}

// NewTranslationHandler creates a new TranslationHandler.
func NewTranslationHandler(translationSvc *service.TranslationService) *TranslationHandler {
	return &TranslationHandler{translationSvc: translationSvc}
}

// Translations handles GET /api/translations/:language.
func (h *TranslationHandler) Translations(c *gin.Context) {
	lang := c.Param("language")

	dict, ok := h.translationSvc.Dictionary(lang)
	if !ok {
		response.Error(c, apperror.ErrUnsupportedLanguage(lang))
		return
	}

	response.OK(c, gin.H{
		"language":     lang,
		"translations": dict,
	})
}

// TranslatedText handles POST /api/translations/text/:language.
func (h *TranslationHandler) TranslatedText(c *gin.Context) {
	lang := c.Param("language")

	var req dto.TranslatedTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	response.OK(c, gin.H{
		"key":      req.Key,
		"language": lang,
		"text":     h.translationSvc.Text(req.Key, lang, req.Params),
	})
}

// Languages handles GET /api/languages.
func (h *TranslationHandler) Languages(c *gin.Context) {
	response.OK(c, gin.H{
		"languages":        h.translationSvc.LanguageNames(),
		"default_language": h.translationSvc.DefaultLanguage(),
	})
}

// Content handles GET /api/content/:language. Unsupported languages fall
// back to English rather than erroring; UI rendering should never break on
// a bad language code.
func (h *TranslationHandler) Content(c *gin.Context) {
	lang := c.Param("language")
	contentType := c.DefaultQuery("type", "all")

	content, effective := h.translationSvc.Content(lang, contentType)

	response.OK(c, gin.H{
		"language": effective,
		"type":     contentType,
		"content":  content,
	})
}
