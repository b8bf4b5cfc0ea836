package notify

import "expvar"

var (
	metricNotifyQueuedTotal       = expvar.NewInt("notify_queued_total")
	metricNotifyDroppedTotal      = expvar.NewInt("notify_dropped_total")
	metricNotifyRetryTotal        = expvar.NewInt("notify_retry_total")
	metricNotifyRetryDroppedTotal = expvar.NewInt("notify_retry_dropped_total")
	metricNotifySentTotal         = expvar.NewInt("notify_sent_total")
	metricNotifyFailedTotal       = expvar.NewInt("notify_failed_total")
	metricNotifyQueueLen          = expvar.NewInt("notify_queue_len")
)
