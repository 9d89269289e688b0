package dbmetrics

import (
	"database/sql"
	"time"

	"github.com/m04kA/RoomBookingService/pkg/metrics"
)

const defaultPoolInterval = 15 * time.Second

// StartPoolMetricsCollector периодически публикует статистику connection pool до закрытия stop
func StartPoolMetricsCollector(db *sql.DB, m *metrics.Metrics, dbName string, interval time.Duration, stop <-chan struct{}) {
	if m == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			stats := db.Stats()
			m.DBOpenConnections.WithLabelValues(dbName).Set(float64(stats.OpenConnections))
			m.DBInUse.WithLabelValues(dbName).Set(float64(stats.InUse))
			m.DBWaitCount.WithLabelValues(dbName).Set(float64(stats.WaitCount))

			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// StartPoolMetricsCollectorWithDefault то же, что StartPoolMetricsCollector, с интервалом 15s
func StartPoolMetricsCollectorWithDefault(db *sql.DB, m *metrics.Metrics, dbName string, stop <-chan struct{}) {
	StartPoolMetricsCollector(db, m, dbName, defaultPoolInterval, stop)
}
