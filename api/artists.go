package api

import (
	"net/http"

	"github.com/SREENATHREDDY1234/music-freak/internal/service/artists"
	"github.com/gin-gonic/gin"
)

type ArtistHandler struct {
	service artists.ArtistUseCase
}

func NewArtistHandler(service artists.ArtistUseCase) *ArtistHandler {
	return &ArtistHandler{service: service}
}

// Register mounts reads publicly. Create and delete take the admin chain,
// update takes the editor chain (admin or artist).
func (h *ArtistHandler) Register(router *gin.RouterGroup, admin, editor []gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", guarded(admin, h.create)...)
	router.PUT("/:id", guarded(editor, h.update)...)
	router.DELETE("/:id", guarded(admin, h.delete)...)
}

func (h *ArtistHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ArtistHandler) get(c *gin.Context) {
	details, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *ArtistHandler) create(c *gin.Context) {
	var input artists.ArtistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	artist, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, artist)
}

func (h *ArtistHandler) update(c *gin.Context) {
	var input artists.ArtistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	artist, err := h.service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, artist)
}

func (h *ArtistHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
