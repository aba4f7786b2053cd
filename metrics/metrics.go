package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"taskquest/models"
)

var (
	taskTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskquest_task_transitions_total",
		Help: "Successful task mutations by resulting status.",
	}, []string{"status"})

	tasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskquest_tasks_created_total",
		Help: "Tasks created, including materialized recurrence occurrences.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskquest_http_requests_total",
		Help: "HTTP requests by method and response code.",
	}, []string{"method", "code"})
)

// ObserveTaskEvent feeds transition counters from store change events;
// wire it with store.Subscribe.
func ObserveTaskEvent(ev models.TaskEvent) {
	taskTransitions.WithLabelValues(string(ev.NewStatus)).Inc()
	if ev.OldStatus == "" {
		tasksCreated.Inc()
	}
}

func ObserveHTTPRequest(method string, code int) {
	httpRequests.WithLabelValues(method, httpCode(code)).Inc()
}

func httpCode(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
