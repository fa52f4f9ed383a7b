package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_scans_total",
		Help: "Barcode scans received at the kiosk.",
	})
	checkinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_checkins_total",
		Help: "Sessions opened.",
	})
	checkoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_checkouts_total",
		Help: "Sessions closed by a student scan.",
	})
	sweepClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetrack_sweep_closed_total",
		Help: "Sessions closed by the bulk logout sweep.",
	})
)
