// README: Prometheus collectors for station assignment, nearby search and geocoding.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StationAssignmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kavach_station_assignments_total",
		Help: "Nearest-station lookups by outcome (district, fallback, unassigned)",
	}, []string{"outcome"})
	StationCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kavach_station_candidates",
		Help:    "Number of candidate stations scanned per assignment",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
	NearbyQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kavach_nearby_queries_total",
		Help: "Total nearby-report queries",
	})
	NearbyFetchCeilingHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kavach_nearby_fetch_ceiling_hits_total",
		Help: "Nearby queries whose candidate fetch was truncated at the fetch ceiling",
	})
	NearbyResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kavach_nearby_results",
		Help:    "Reports returned per nearby query",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kavach_geocode_requests_total",
		Help: "Reverse geocoding lookups by source (cache, remote, error)",
	}, []string{"source"})
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kavach_notifications_total",
		Help: "Station notifications by channel and result",
	}, []string{"channel", "result"})
	ReportsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kavach_reports_created_total",
		Help: "Total reports persisted",
	})
)

func init() {
	prometheus.MustRegister(
		StationAssignmentsTotal,
		StationCandidates,
		NearbyQueriesTotal,
		NearbyFetchCeilingHitsTotal,
		NearbyResults,
		GeocodeRequestsTotal,
		NotificationsTotal,
		ReportsCreatedTotal,
	)
}

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
