package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"lichess-bot/internal/lichess"
)

type EventKind string

const (
	EventTerminated EventKind = "terminated"
	EventChallenge  EventKind = "challenge"
	EventGameStart  EventKind = "gameStart"
)

// ControlEvent is one decoded notification feed entry. Kinds other than the
// three above are carried through and ignored by the dispatcher.
type ControlEvent struct {
	Kind      EventKind
	Challenge lichess.Challenge
	GameID    string
}

func DecodeEvent(line []byte) (ControlEvent, error) {
	var raw lichess.Event
	if err := json.Unmarshal(line, &raw); err != nil {
		return ControlEvent{}, fmt.Errorf("decode event: %w", err)
	}
	ev := ControlEvent{Kind: EventKind(raw.Type)}
	switch ev.Kind {
	case EventChallenge:
		if raw.Challenge == nil {
			return ControlEvent{}, fmt.Errorf("decode event: challenge payload missing")
		}
		ev.Challenge = *raw.Challenge
	case EventGameStart:
		if raw.Game == nil {
			return ControlEvent{}, fmt.Errorf("decode event: game payload missing")
		}
		ev.GameID = raw.Game.ID
		if ev.GameID == "" {
			ev.GameID = raw.Game.GameID
		}
	}
	return ev, nil
}

// Queue is an unbounded FIFO shared by the watcher (and the dispatcher's own
// synthesized events) on the producing side and the dispatcher on the other.
type Queue struct {
	mu    sync.Mutex
	items []ControlEvent
	wake  chan struct{}
}

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

func (q *Queue) Push(ev ControlEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	metricQueueLen.Set(int64(q.Len()))
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop blocks until an event is available or ctx is done.
func (q *Queue) Pop(ctx context.Context) (ControlEvent, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = ControlEvent{}
			q.items = q.items[1:]
			q.mu.Unlock()
			metricQueueLen.Set(int64(q.Len()))
			return ev, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ControlEvent{}, ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
