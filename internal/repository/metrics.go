package repository

import (
	"time"

	"github.com/idp-tracker/idp-api/pkg/metrics"
)

// recordDBOperation observes duration and outcome for a repository operation
func recordDBOperation(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBOperationDuration.WithLabelValues(operation, status).Observe(metrics.MeasureDuration(start))
	metrics.DBOperationTotal.WithLabelValues(operation, status).Inc()
}
