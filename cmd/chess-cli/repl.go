package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/park285/simple-ai-chess/internal/adapter/chesspresenter"
	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/internal/termboard"
	"go.uber.org/zap"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdMove
	cmdRestart
	cmdPGN
	cmdMoves
	cmdQuit
	cmdUnknown
)

type command struct {
	kind     commandKind
	from, to string
}

// parseCommand accepts "e2e4", "e2 e4", "e2-e4" and the word commands.
func parseCommand(line string) command {
	s := strings.ToLower(strings.TrimSpace(line))
	switch s {
	case "":
		return command{kind: cmdNone}
	case "restart", "new":
		return command{kind: cmdRestart}
	case "pgn":
		return command{kind: cmdPGN}
	case "moves", "legal":
		return command{kind: cmdMoves}
	case "quit", "exit", "q":
		return command{kind: cmdQuit}
	}
	compact := strings.NewReplacer(" ", "", "-", "").Replace(s)
	// a trailing promotion letter is accepted; the game always promotes to a queen
	if len(compact) == 5 && strings.ContainsRune("qrbn", rune(compact[4])) {
		compact = compact[:4]
	}
	if len(compact) == 4 {
		return command{kind: cmdMove, from: compact[:2], to: compact[2:]}
	}
	return command{kind: cmdUnknown}
}

type repl struct {
	game   *game.Orchestrator
	pres   *chesspresenter.Presenter
	board  *termboard.Printer
	meta   chesspresenter.SessionMeta
	logger *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

func newREPL(g *game.Orchestrator, pres *chesspresenter.Presenter, board *termboard.Printer, meta chesspresenter.SessionMeta, out io.Writer, logger *zap.Logger) *repl {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &repl{game: g, pres: pres, board: board, meta: meta, out: out, logger: logger}
	g.SetListener(r.onUpdate)
	return r
}

// onUpdate redraws after the opponent replies; the REPL draws its own moves.
func (r *repl) onUpdate(u game.Update) {
	if u.Kind != game.KindOpponentMove {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out)
	r.showLocked(u.Snapshot)
	r.promptLocked()
}

func (r *repl) show(snap game.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showLocked(snap)
}

func (r *repl) showLocked(snap game.Snapshot) {
	board, err := rules.ParseBoard(snap.FEN)
	if err != nil {
		r.logger.Error("board_parse_failed", zap.String("fen", snap.FEN), zap.Error(err))
		return
	}
	st := r.pres.State(r.meta, snap, nil)
	from, to := "", ""
	if st.LastMove != nil {
		from, to = st.LastMove.From, st.LastMove.To
	}
	_ = r.board.Fprint(r.out, board, from, to)
	for _, line := range r.pres.StatusLines(st, snap) {
		fmt.Fprintln(r.out, line)
	}
}

func (r *repl) promptLocked() {
	fmt.Fprint(r.out, r.pres.Formatter().Label("cli.prompt", "move> "))
}

func (r *repl) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

// handle runs one input line and reports whether the REPL should stop.
func (r *repl) handle(line string) bool {
	f := r.pres.Formatter()
	cmd := parseCommand(line)
	switch cmd.kind {
	case cmdNone:
	case cmdQuit:
		r.println(f.Label("cli.bye", "Bye."))
		return true
	case cmdRestart:
		snap, err := r.game.Restart()
		if err != nil {
			r.println(f.Error(err, "", "").Message)
			break
		}
		r.show(snap)
	case cmdPGN:
		r.println(r.game.PGN())
	case cmdMoves:
		r.println(strings.Join(r.game.LegalUCI(), " "))
	case cmdMove:
		snap, err := r.game.AttemptMove(cmd.from, cmd.to)
		if err != nil {
			r.println(f.Error(err, cmd.from, cmd.to).Message)
			break
		}
		r.show(snap)
	default:
		in := strings.TrimSpace(line)
		r.println(f.Message("cli.unknown", map[string]string{"Input": in}, "Unknown command "+in))
	}
	return false
}

func (r *repl) run(in io.Reader) error {
	f := r.pres.Formatter()
	r.println(f.Message("cli.welcome", map[string]string{"Nickname": r.meta.Nickname}, "Simple AI chess. You are White."))
	r.show(r.game.Snapshot())

	scanner := bufio.NewScanner(in)
	for {
		r.mu.Lock()
		r.promptLocked()
		r.mu.Unlock()
		if !scanner.Scan() {
			return scanner.Err()
		}
		if r.handle(scanner.Text()) {
			return nil
		}
	}
}
