// Package metrics holds the Prometheus collectors for the booking core.
// A nil *Booking is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Booking struct {
	created      prometheus.Counter
	rejected     *prometheus.CounterVec
	cancelled    prometheus.Counter
	conflicts    *prometheus.CounterVec
	corruptions  prometheus.Counter
	ticketsSold  *prometheus.CounterVec
	restoreSkips prometheus.Counter
}

func NewBooking(reg prometheus.Registerer) *Booking {
	m := &Booking{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "bookings_created_total",
			Help:      "Bookings committed.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "bookings_rejected_total",
			Help:      "Booking requests rejected, by reason.",
		}, []string{"reason"}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings cancelled.",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "inventory_conflicts_total",
			Help:      "Conditional inventory writes that lost to a concurrent writer.",
		}, []string{"operation"}),
		corruptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "ledger_corruptions_total",
			Help:      "Ledger corruption conditions detected.",
		}),
		ticketsSold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "tickets_sold_total",
			Help:      "Tickets sold, by ticket type.",
		}, []string{"type"}),
		restoreSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "music_freak",
			Name:      "inventory_restore_skipped_total",
			Help:      "Line items not restored on cancel because the event or category is gone.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.created, m.rejected, m.cancelled, m.conflicts, m.corruptions, m.ticketsSold, m.restoreSkips)
	}
	return m
}

func (m *Booking) Created() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *Booking) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Booking) Cancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

func (m *Booking) Conflict(operation string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(operation).Inc()
}

func (m *Booking) Corruption() {
	if m == nil {
		return
	}
	m.corruptions.Inc()
}

func (m *Booking) TicketsSold(ticketType string, n int) {
	if m == nil {
		return
	}
	m.ticketsSold.WithLabelValues(ticketType).Add(float64(n))
}

func (m *Booking) RestoreSkipped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.restoreSkips.Add(float64(n))
}
