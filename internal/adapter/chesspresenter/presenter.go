package chesspresenter

import (
	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
	"go.uber.org/zap"
)

// SessionMeta identifies who a state is rendered for.
type SessionMeta struct {
	ID       string
	Nickname string
}

// Presenter builds complete client states from snapshots.
type Presenter struct {
	format      *Formatter
	orientation string
	logger      *zap.Logger
}

func NewPresenter(f *Formatter, orientation string, logger *zap.Logger) *Presenter {
	if orientation == "" {
		orientation = "white"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{format: f, orientation: orientation, logger: logger}
}

func (p *Presenter) Formatter() *Formatter { return p.format }

func (p *Presenter) Orientation() string { return p.orientation }

// State renders snap for meta. legal is passed through so clients can highlight
// destinations; it may be nil.
func (p *Presenter) State(meta SessionMeta, snap game.Snapshot, legal []string) chessdto.GameState {
	st := ToDTOState(snap)
	st.SessionID = meta.ID
	st.Nickname = meta.Nickname
	st.Orientation = p.orientation
	st.Header = p.format.Header(snap)
	st.OutcomeText = p.format.Outcome(snap.Outcome)
	if !snap.Over && len(legal) > 0 {
		st.LegalUCI = append([]string(nil), legal...)
	}

	material, captured, err := ComputeMaterial(snap.FEN)
	if err != nil {
		p.logger.Warn("presenter_material_failed", zap.String("game_id", snap.GameID), zap.Error(err))
	}
	st.Material = material
	st.Captured = captured
	return st
}

// StatusLines are the text rows shown under the board by text clients.
func (p *Presenter) StatusLines(st chessdto.GameState, snap game.Snapshot) []string {
	lines := []string{st.Header}
	if st.Over {
		lines = append(lines, st.OutcomeText)
	} else {
		lines = append(lines, p.format.Turn(snap.Turn))
	}
	if s := p.format.LastMove(st.LastMove); s != "" {
		lines = append(lines, s)
	}
	if s := p.format.Opening(st.Opening); s != "" {
		lines = append(lines, s)
	}
	lines = append(lines, p.format.Material(st.Material))
	if s := p.format.Captured(st.Captured); s != "" {
		lines = append(lines, s)
	}
	return lines
}
