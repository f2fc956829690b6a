package pulse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callaudiod_reconnects_total",
			Help: "Total number of PulseAudio context reconnect attempts.",
		},
	)

	discoveryRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callaudiod_discovery_runs_total",
			Help: "Total number of full topology discovery passes.",
		},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callaudiod_operations_total",
			Help: "Total number of completed operations by kind and result.",
		},
		[]string{"kind", "result"},
	)

	portSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callaudiod_port_switches_total",
			Help: "Total number of sink/source port switch requests issued.",
		},
		[]string{"direction"},
	)

	profileSwitchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callaudiod_profile_switches_total",
			Help: "Total number of card profile switch requests issued.",
		},
	)

	moduleUnloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "callaudiod_module_unloads_total",
			Help: "Total number of successful module-switch-on-port-available unloads.",
		},
	)
)

func recordOperationResult(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	operationsTotal.WithLabelValues(kind, result).Inc()
}
