package postgresengine

import (
	"time"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// observer holds the logging configuration shared by the Store and its transactions.
type observer struct {
	logger             catalog.Logger
	slowQueryThreshold time.Duration
}

func (o observer) logQueryWithDuration(action, sqlQuery string, duration time.Duration) {
	if o.logger == nil {
		return
	}

	o.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)

	if o.slowQueryThreshold > 0 && duration > o.slowQueryThreshold {
		o.logger.Warn(logMsgSlowQuery, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (o observer) logWarn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}

func (o observer) logError(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Error(msg, args...)
	}
}

func durationToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
