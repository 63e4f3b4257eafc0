package api

import (
	"errors"
	"net/http"

	"github.com/SREENATHREDDY1234/music-freak/internal/ledger"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/artists"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/booking"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/events"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/news"
	"github.com/SREENATHREDDY1234/music-freak/internal/service/users"
	"github.com/gin-gonic/gin"
)

const corruptionMessage = "ticket inventory is inconsistent for this event; an operator has been notified"

var statusRules = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		ledger.ErrInvalidQuantity,
		ledger.ErrUnknownCategory,
		booking.ErrInvalidInput,
		events.ErrInvalidInput,
		artists.ErrInvalidInput,
		news.ErrInvalidInput,
		users.ErrInvalidInput,
		repository.ErrUnknownPlatform,
	}},
	{http.StatusUnauthorized, []error{users.ErrInvalidCredentials}},
	{http.StatusForbidden, []error{booking.ErrForbidden, users.ErrForbidden}},
	{http.StatusNotFound, []error{
		booking.ErrEventNotFound,
		booking.ErrBookingNotFound,
		events.ErrNotFound,
		events.ErrArtistNotFound,
		artists.ErrNotFound,
		news.ErrNotFound,
		news.ErrArtistNotFound,
		news.ErrUserNotFound,
		users.ErrNotFound,
		repository.ErrNotFound,
	}},
	{http.StatusConflict, []error{
		ledger.ErrInsufficientInventory,
		ledger.ErrConcurrencyConflict,
		artists.ErrNameTaken,
		users.ErrEmailTaken,
		repository.ErrDuplicate,
		repository.ErrConflict,
	}},
}

func statusFor(err error) int {
	if errors.Is(err, ledger.ErrLedgerCorruption) {
		return http.StatusInternalServerError
	}
	for _, rule := range statusRules {
		for _, target := range rule.errs {
			if errors.Is(err, target) {
				return rule.status
			}
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": ..., "details": ...}. Internal errors
// are recorded on the context for the access log and never echoed verbatim.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{}

	switch {
	case errors.Is(err, ledger.ErrLedgerCorruption):
		_ = c.Error(err)
		body["error"] = corruptionMessage
	case status == http.StatusInternalServerError:
		_ = c.Error(err)
		body["error"] = "internal server error"
	default:
		body["error"] = err.Error()
	}

	var itemErr *ledger.LineItemError
	if errors.As(err, &itemErr) {
		details := gin.H{
			"line_item":   itemErr.Index,
			"ticket_type": itemErr.CategoryID,
			"requested":   itemErr.Requested,
		}
		if errors.Is(itemErr.Err, ledger.ErrInsufficientInventory) {
			details["available"] = itemErr.Available
		}
		body["details"] = details
	}

	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
