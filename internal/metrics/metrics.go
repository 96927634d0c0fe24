package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "techcorp",
		Name:      "store_operations_total",
		Help:      "Data store round trips by table, operation and result",
	}, []string{"table", "op", "result"})

	applications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "techcorp",
		Name:      "applications_total",
		Help:      "Developer application submissions by outcome",
	}, []string{"result"})

	bootTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "techcorp",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
)

// ObserveStoreOp counts one data store call.
func ObserveStoreOp(table, op string, err error) {
	storeOps.WithLabelValues(table, op, result(err)).Inc()
}

// ObserveApplication counts one application form submission.
func ObserveApplication(err error) {
	applications.WithLabelValues(result(err)).Inc()
}

// MarkBoot records the server start time.
func MarkBoot(t time.Time) {
	bootTime.Set(float64(t.UnixMilli()))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
