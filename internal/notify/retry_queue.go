package notify

import "time"

// retryQueue feeds failed jobs back after a delay. Jobs still waiting when
// stop closes are dropped.
type retryQueue struct {
	out  chan<- job
	stop <-chan struct{}
}

func newRetryQueue(out chan<- job, stop <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, stop: stop}
}

func (q *retryQueue) Enqueue(j job, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case <-q.stop:
			metricNotifyRetryDroppedTotal.Add(1)
		case q.out <- j:
			metricNotifyQueueLen.Set(int64(len(q.out)))
		}
	})
}
