package api

import (
	"net/http"

	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type ticketRequest struct {
	CategoryID string `json:"ticket_type" binding:"required"`
	Quantity   int    `json:"quantity"`
}

type createBookingRequest struct {
	EventID string          `json:"event_id" binding:"required"`
	Tickets []ticketRequest `json:"tickets" binding:"required,min=1"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register expects router to be behind Authenticate.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
	router.GET("/user/:userId", h.listForUser)
}

func (h *BookingHandler) create(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	items := make([]domain.LineItem, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		items = append(items, domain.LineItem{CategoryID: t.CategoryID, Quantity: t.Quantity})
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		PurchaserID:    identity.UserID,
		PurchaserEmail: identity.Email,
		EventID:        req.EventID,
		Tickets:        items,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) get(c *gin.Context) {
	identity, _ := identityFrom(c)
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	identity, _ := identityFrom(c)
	report, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *BookingHandler) listForUser(c *gin.Context) {
	identity, _ := identityFrom(c)
	list, err := h.service.ListUserBookings(c.Request.Context(), c.Param("userId"), identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
