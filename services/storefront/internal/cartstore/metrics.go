package cartstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback stages.
const (
	stageLoad = "load"
	stageSave = "save"
)

var fallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_fallback_total",
		Help: "Remote cart calls that failed and were served from local storage",
	},
	[]string{"operation", "stage"},
)
