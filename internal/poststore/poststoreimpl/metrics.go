package poststoreimpl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var postsAdded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "posts_added_total",
	Help: "Number of posts accepted by the store",
})

var postsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Name: "posts_published_total",
	Help: "Number of posts moved from pending to published",
})

var writeErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "post_store_write_errors_total",
	Help: "Number of failed writes of the post collection",
})

var pendingPosts = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "posts_pending",
	Help: "Number of posts waiting for their scheduled time",
})
