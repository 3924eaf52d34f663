// Package metrics defines and registers all custom Prometheus metrics for the
// task-assignment API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskboard"

// TaskTransitionsTotal counts workflow transition attempts.
// Labels:
//   - operation: "start_work", "complete", "send_to_rework", "update"
//   - result: "applied", "rejected", "error"
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of task workflow transition attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// NotificationsTotal counts notification publish attempts.
// Labels:
//   - audience: "admin" or "user"
//   - result: "published" or "error"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of workflow notifications published, by audience and result.",
	},
	[]string{"audience", "result"},
)

// AssignmentEventsTotal counts ingestion feed events by outcome.
// Label:
//   - result: "processed" or "error"
var AssignmentEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignment_events_total",
		Help:      "Total number of external assignment events, by processing result.",
	},
	[]string{"result"},
)

// AssignmentQueueDepth tracks events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AssignmentQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "assignment_queue_depth",
		Help:      "Current number of assignment events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
