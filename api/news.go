package api

import (
	"net/http"

	"github.com/SREENATHREDDY1234/music-freak/internal/service/news"
	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	service news.NewsUseCase
}

type shareRequest struct {
	Platform string `json:"platform" binding:"required"`
}

func NewNewsHandler(service news.NewsUseCase) *NewsHandler {
	return &NewsHandler{service: service}
}

// Register mounts public reads. The feed needs an authenticated caller and
// creation needs an admin.
func (h *NewsHandler) Register(router *gin.RouterGroup, authenticated, admin []gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/feed", guarded(authenticated, h.feed)...)
	router.GET("/category/:category", h.byCategory)
	router.GET("/artist/:artistId", h.byArtist)
	router.GET("/:id", h.get)
	router.POST("", guarded(admin, h.create)...)
	router.POST("/:id/share", h.share)
}

func (h *NewsHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NewsHandler) get(c *gin.Context) {
	item, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *NewsHandler) byCategory(c *gin.Context) {
	list, err := h.service.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NewsHandler) byArtist(c *gin.Context) {
	list, err := h.service.ByArtist(c.Request.Context(), c.Param("artistId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NewsHandler) feed(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	list, err := h.service.Feed(c.Request.Context(), identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NewsHandler) create(c *gin.Context) {
	var input news.NewsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *NewsHandler) share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.service.Share(c.Request.Context(), c.Param("id"), req.Platform)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
