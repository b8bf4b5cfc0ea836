package bot

import (
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
)

func newBoard(initialFEN string) *chess.Game {
	if initialFEN == "" || initialFEN == "startpos" {
		return chess.NewGame()
	}
	fen, err := chess.FEN(initialFEN)
	if err != nil {
		log.Warn().Err(err).Str("fen", initialFEN).Msg("initial_fen_invalid")
		return chess.NewGame()
	}
	return chess.NewGame(fen)
}

// applyUCIMove plays move when it is legal on board. An illegal move is
// logged and leaves board untouched.
func applyUCIMove(board *chess.Game, move string) bool {
	m, err := chess.UCINotation{}.Decode(board.Position(), move)
	if err == nil {
		err = board.Move(m)
	}
	if err != nil {
		metricIllegalMovesIgnored.Add(1)
		log.Debug().Str("move", move).Str("fen", board.FEN()).Msg("ignore_illegal_move")
		return false
	}
	return true
}

// replayMoves rebuilds a board from the full history. It reports false, and
// returns nil, when any move in the history does not apply.
func replayMoves(initialFEN string, moves []string) (*chess.Game, bool) {
	board := newBoard(initialFEN)
	for _, mv := range moves {
		m, err := chess.UCINotation{}.Decode(board.Position(), mv)
		if err == nil {
			err = board.Move(m)
		}
		if err != nil {
			return nil, false
		}
	}
	return board, true
}
