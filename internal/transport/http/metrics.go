package httptransport

import "expvar"

var metricStatusRequests = expvar.NewInt("status_requests_total")
