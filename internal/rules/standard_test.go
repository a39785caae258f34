package rules

import (
	"errors"
	"strings"
	"testing"
)

func newEngine(t *testing.T, fen string) Engine {
	t.Helper()
	e, err := New(fen)
	if err != nil {
		t.Fatalf("New(%q): %v", fen, err)
	}
	return e
}

func play(t *testing.T, e Engine, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if _, err := e.Move(m[:2], m[2:4], 0); err != nil {
			t.Fatalf("move %s: %v", m, err)
		}
	}
}

func TestStartPosition(t *testing.T) {
	e := newEngine(t, "")
	if e.FEN() != StartFEN {
		t.Fatalf("start FEN = %q", e.FEN())
	}
	if e.Turn() != White {
		t.Fatalf("turn = %v", e.Turn())
	}
	moves := e.LegalMoves()
	if len(moves) != 20 {
		t.Fatalf("expected 20 legal moves, got %d: %v", len(moves), moves)
	}
	for _, m := range moves {
		if strings.Contains(m, "x") {
			t.Fatalf("no captures expected at start, got %q", m)
		}
	}
	if e.Status().Over() {
		t.Fatalf("fresh game reported over")
	}
}

func TestMoveRecordsSAN(t *testing.T) {
	e := newEngine(t, "")
	rec, err := e.Move("E2", " e4", 0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if rec.SAN != "e4" || rec.UCI != "e2e4" || rec.Color != White || rec.Capture {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if e.Turn() != Black || e.FEN() == StartFEN {
		t.Fatalf("position did not advance: %s", e.FEN())
	}
	rec, err = e.MoveSAN("d5")
	if err != nil {
		t.Fatalf("MoveSAN: %v", err)
	}
	if rec.From != "d7" || rec.To != "d5" {
		t.Fatalf("unexpected SAN record: %+v", rec)
	}
	if got := e.LegalMoves(); !contains(got, "exd5") {
		t.Fatalf("expected exd5 among %v", got)
	}
	if len(e.History()) != 2 {
		t.Fatalf("history length = %d", len(e.History()))
	}
}

func TestMoveSANMatchesLegalMoves(t *testing.T) {
	e := newEngine(t, "")
	if _, err := e.MoveSAN("e5"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("MoveSAN(e5) for White err = %v", err)
	}
	for _, tc := range []struct{ san, uci string }{
		{" e4 ", "e2e4"},
		{"Nc6", "b8c6"},
		{"Nf3", "g1f3"},
	} {
		rec, err := e.MoveSAN(tc.san)
		if err != nil {
			t.Fatalf("MoveSAN(%q): %v", tc.san, err)
		}
		if rec.UCI != tc.uci {
			t.Fatalf("MoveSAN(%q) played %s, want %s", tc.san, rec.UCI, tc.uci)
		}
	}

	mated := newEngine(t, "")
	play(t, mated, "f2f3", "e7e5", "g2g4")
	rec, err := mated.MoveSAN("Qh4#")
	if err != nil {
		t.Fatalf("MoveSAN(Qh4#): %v", err)
	}
	if rec.UCI != "d8h4" || !mated.Status().Checkmate {
		t.Fatalf("expected mate by d8h4, got %+v", rec)
	}
	if _, err := mated.MoveSAN("Kf2"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("MoveSAN after mate err = %v", err)
	}
}

func TestMoveRejections(t *testing.T) {
	e := newEngine(t, "")
	before := e.FEN()

	cases := []struct {
		from, to string
		want     error
	}{
		{"e3", "e4", ErrIllegalMove},
		{"e7", "e5", ErrIllegalMove},
		{"e2", "e5", ErrIllegalMove},
		{"z9", "e4", ErrInvalidSquare},
		{"e2", "", ErrInvalidSquare},
	}
	for _, tc := range cases {
		if _, err := e.Move(tc.from, tc.to, 0); !errors.Is(err, tc.want) {
			t.Fatalf("Move(%s,%s) err = %v, want %v", tc.from, tc.to, err, tc.want)
		}
	}
	if _, err := e.MoveSAN("Ke2"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("MoveSAN illegal err = %v", err)
	}
	if e.FEN() != before || len(e.History()) != 0 {
		t.Fatalf("rejected moves mutated state")
	}
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	e := newEngine(t, "")
	play(t, e, "f2f3", "e7e5", "g2g4", "d8h4")
	st := e.Status()
	if !st.Checkmate || st.Draw || !st.Over() {
		t.Fatalf("expected checkmate, got %+v", st)
	}
	if e.Turn() != White {
		t.Fatalf("mated side should be to move, got %v", e.Turn())
	}
	if h := e.History(); h[len(h)-1].SAN != "Qh4#" {
		t.Fatalf("last SAN = %q", h[len(h)-1].SAN)
	}
	if _, err := e.Move("a2", "a3", 0); !errors.Is(err, ErrGameOver) {
		t.Fatalf("move after mate err = %v", err)
	}
	if len(e.LegalMoves()) != 0 {
		t.Fatalf("no legal moves expected after mate")
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	e := newEngine(t, "8/P7/8/8/8/8/8/k6K w - - 0 1")
	rec, err := e.Move("a7", "a8", 0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !strings.Contains(rec.SAN, "=Q") || rec.UCI != "a7a8q" {
		t.Fatalf("expected queen promotion, got %+v", rec)
	}
}

func TestUnderPromotion(t *testing.T) {
	e := newEngine(t, "8/P7/8/8/8/8/8/k6K w - - 0 1")
	rec, err := e.Move("a7", "a8", PromoteKnight)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !strings.Contains(rec.SAN, "=N") {
		t.Fatalf("expected knight promotion, got %+v", rec)
	}
}

func TestDrawKinds(t *testing.T) {
	t.Run("stalemate", func(t *testing.T) {
		e := newEngine(t, "k7/8/1Q6/8/8/8/8/7K w - - 0 1")
		play(t, e, "b6c7")
		st := e.Status()
		if !st.Stalemate || !st.Draw || st.Checkmate {
			t.Fatalf("expected stalemate, got %+v", st)
		}
	})
	t.Run("insufficient material", func(t *testing.T) {
		e := newEngine(t, "k7/8/8/8/8/8/1r6/K7 w - - 0 1")
		play(t, e, "a1b2")
		st := e.Status()
		if !st.InsufficientMaterial || !st.Draw {
			t.Fatalf("expected insufficient material, got %+v", st)
		}
	})
	t.Run("threefold repetition", func(t *testing.T) {
		e := newEngine(t, "")
		play(t, e, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8")
		st := e.Status()
		if !st.ThreefoldRepetition || !st.Draw {
			t.Fatalf("expected repetition draw, got %+v", st)
		}
	})
	t.Run("fifty move rule", func(t *testing.T) {
		e := newEngine(t, "k7/8/8/8/8/8/8/K6R w - - 99 80")
		play(t, e, "h1h2")
		st := e.Status()
		if !st.Draw || st.ThreefoldRepetition || st.Stalemate || st.InsufficientMaterial {
			t.Fatalf("expected plain draw, got %+v", st)
		}
	})
}

func TestInvalidFEN(t *testing.T) {
	if _, err := New("not a fen"); !errors.Is(err, ErrInvalidFEN) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpeningName(t *testing.T) {
	e := newEngine(t, "")
	namer, ok := e.(OpeningNamer)
	if !ok {
		t.Fatalf("standard engine should name openings")
	}
	if code, _ := namer.Opening(); code != "" {
		t.Fatalf("no opening expected before the first move, got %q", code)
	}
	play(t, e, "e2e4", "e7e5", "g1f3", "b8c6", "f1b5")
	code, title := namer.Opening()
	if code == "" || title == "" {
		t.Fatalf("expected an ECO classification, got %q %q", code, title)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
