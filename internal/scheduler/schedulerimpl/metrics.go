package schedulerimpl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ticks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "publication_ticks_total",
	Help: "Number of publication passes run by the clock",
})

var tickErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "publication_tick_errors_total",
	Help: "Number of publication passes that failed",
})
