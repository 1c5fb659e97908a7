package linksafety

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guardian_url_lookup_duration_sec",
	Help: "Duration of external URL reputation lookups",
}, []string{"provider"})

var lookupCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_url_lookups",
	Help: "Number of external URL reputation lookups, by HTTP status",
}, []string{"provider", "status"})

var analyzedURLCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_urls_analyzed",
	Help: "Number of URLs analyzed, by resulting risk level",
}, []string{"risk"})
