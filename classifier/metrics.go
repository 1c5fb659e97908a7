package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guardian_classify_duration_sec",
	Help: "Duration of external classifier calls",
}, []string{"kind"})

var classifyCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardian_classify_calls",
	Help: "Number of external classifier calls, by HTTP status",
}, []string{"kind", "status"})
