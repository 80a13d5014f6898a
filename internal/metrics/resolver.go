package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	resolverStoreQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docref",
			Name:      "resolver_store_queries_total",
			Help:      "Batched store queries issued during reference resolution",
		},
		[]string{"collection"},
	)

	resolverRefsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docref",
			Name:      "resolver_references_resolved_total",
			Help:      "References successfully substituted with documents",
		},
		[]string{"collection"},
	)

	resolverRefsAbsent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docref",
			Name:      "resolver_references_absent_total",
			Help:      "References that resolved to the absent marker (unset or dangling)",
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(resolverStoreQueries)
	prometheus.MustRegister(resolverRefsResolved)
	prometheus.MustRegister(resolverRefsAbsent)
}

// ResolverRecorder implements usecase/resolve.Recorder on Prometheus
// counters.
type ResolverRecorder struct{}

// NewResolverRecorder creates a ResolverRecorder.
func NewResolverRecorder() *ResolverRecorder {
	return &ResolverRecorder{}
}

// StoreQuery counts one batched store query.
func (ResolverRecorder) StoreQuery(collection string) {
	resolverStoreQueries.WithLabelValues(collection).Inc()
}

// Resolved counts substituted references.
func (ResolverRecorder) Resolved(collection string, count int) {
	resolverRefsResolved.WithLabelValues(collection).Add(float64(count))
}

// Absent counts unset and dangling references.
func (ResolverRecorder) Absent(collection string, count int) {
	resolverRefsAbsent.WithLabelValues(collection).Add(float64(count))
}
