package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SREENATHREDDY1234/music-freak/internal/service/events"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service events.EventUseCase
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

// Register mounts read routes publicly and guards mutations with admin.
func (h *EventHandler) Register(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/nearby", h.nearby)
	router.GET("/:id", h.get)
	router.POST("", guarded(admin, h.create)...)
	router.PUT("/:id", guarded(admin, h.update)...)
	router.DELETE("/:id", guarded(admin, h.delete)...)
}

func (h *EventHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), events.ListFilter{
		ArtistID: c.Query("artist"),
		City:     c.Query("city"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *EventHandler) get(c *gin.Context) {
	ev, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) nearby(c *gin.Context) {
	lat, err := floatQuery(c, "lat", true)
	if err != nil {
		badRequest(c, err)
		return
	}
	lng, err := floatQuery(c, "lng", true)
	if err != nil {
		badRequest(c, err)
		return
	}
	distance, err := floatQuery(c, "distance", false)
	if err != nil {
		badRequest(c, err)
		return
	}

	list, err := h.service.Nearby(c.Request.Context(), lat, lng, distance)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *EventHandler) create(c *gin.Context) {
	var input events.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *EventHandler) update(c *gin.Context) {
	var input events.UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func floatQuery(c *gin.Context, name string, required bool) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		if required {
			return 0, fmt.Errorf("query parameter %q is required", name)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be a number", name)
	}
	return v, nil
}

func guarded(middleware []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(middleware)+1)
	chain = append(chain, middleware...)
	return append(chain, h)
}
