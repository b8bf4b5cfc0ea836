package bot

import (
	"testing"

	"github.com/notnil/chess"
)

func mustBoard(t *testing.T, sans ...string) *chess.Game {
	t.Helper()
	g := chess.NewGame()
	for _, san := range sans {
		if err := g.MoveStr(san); err != nil {
			t.Fatalf("move %s: %v", san, err)
		}
	}
	return g
}

func TestApplyLegalMoveYieldsExactPosition(t *testing.T) {
	board := newBoard("startpos")
	if !applyUCIMove(board, "e2e4") {
		t.Fatal("e2e4 rejected")
	}
	if want := mustBoard(t, "e4").FEN(); board.FEN() != want {
		t.Fatalf("FEN = %s, want %s", board.FEN(), want)
	}
}

func TestApplyIllegalMoveLeavesBoardUnchanged(t *testing.T) {
	board := newBoard("")
	before := board.FEN()
	for _, mv := range []string{"e2e5", "e7e5", "zz", ""} {
		if applyUCIMove(board, mv) {
			t.Fatalf("%q accepted", mv)
		}
		if board.FEN() != before {
			t.Fatalf("board changed after %q: %s", mv, board.FEN())
		}
	}
}

func TestNewBoardFromFEN(t *testing.T) {
	fen := "8/8/8/8/8/8/8/K6k b - - 0 1"
	board := newBoard(fen)
	if board.FEN() != fen {
		t.Fatalf("FEN = %s, want %s", board.FEN(), fen)
	}
	if newBoard("not a fen").FEN() != chess.NewGame().FEN() {
		t.Fatal("invalid FEN should fall back to the standard position")
	}
}

func TestReplayMoves(t *testing.T) {
	board, ok := replayMoves("", []string{"e2e4", "e7e5", "g1f3"})
	if !ok {
		t.Fatal("replay failed")
	}
	if want := mustBoard(t, "e4", "e5", "Nf3").FEN(); board.FEN() != want {
		t.Fatalf("FEN = %s, want %s", board.FEN(), want)
	}
	if _, ok := replayMoves("", []string{"e2e4", "e2e4"}); ok {
		t.Fatal("replay of illegal history should fail")
	}
}

func TestSyncBoard(t *testing.T) {
	s := &Session{gameID: "g1", game: &Game{}, board: newBoard("")}

	s.syncBoard([]string{"e2e4"})
	if want := mustBoard(t, "e4").FEN(); s.board.FEN() != want {
		t.Fatalf("trailing move: FEN = %s", s.board.FEN())
	}

	// echo of the same history
	s.syncBoard([]string{"e2e4"})
	if len(s.board.Moves()) != 1 {
		t.Fatalf("echo changed board: %d moves", len(s.board.Moves()))
	}

	// illegal trailing move is dropped
	before := s.board.FEN()
	s.syncBoard([]string{"e2e4", "d7d3"})
	if s.board.FEN() != before {
		t.Fatalf("illegal trailing move changed board: %s", s.board.FEN())
	}

	// missed updates trigger a full replay
	s.syncBoard([]string{"e2e4", "e7e5", "g1f3", "b8c6"})
	if want := mustBoard(t, "e4", "e5", "Nf3", "Nc6").FEN(); s.board.FEN() != want {
		t.Fatalf("resync: FEN = %s, want %s", s.board.FEN(), want)
	}

	// an unreplayable history keeps the current board
	before = s.board.FEN()
	s.syncBoard([]string{"a1a8"})
	if s.board.FEN() != before {
		t.Fatal("failed resync replaced the board")
	}
}
