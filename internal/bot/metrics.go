package bot

import "expvar"

var (
	metricEventsReceived      = expvar.NewInt("bot_events_received_total")
	metricQueueLen            = expvar.NewInt("bot_event_queue_len")
	metricStreamReconnects    = expvar.NewInt("bot_event_stream_reconnects_total")
	metricChallengesAccepted  = expvar.NewInt("bot_challenges_accepted_total")
	metricChallengesDeclined  = expvar.NewInt("bot_challenges_declined_total")
	metricGamesStarted        = expvar.NewInt("bot_games_started_total")
	metricGamesFinished       = expvar.NewInt("bot_games_finished_total")
	metricSessionActive       = expvar.NewInt("bot_session_active")
	metricSessionRetries      = expvar.NewInt("bot_session_retries_total")
	metricMovesSubmitted      = expvar.NewInt("bot_moves_submitted_total")
	metricIllegalMovesIgnored = expvar.NewInt("bot_illegal_moves_ignored_total")
)
