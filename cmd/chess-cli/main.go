package main

import (
	"flag"
	"log"
	"os"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/park285/simple-ai-chess/internal/adapter/chesspresenter"
	appcfg "github.com/park285/simple-ai-chess/internal/config"
	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/internal/msgcat"
	"github.com/park285/simple-ai-chess/internal/obslog"
	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/internal/termboard"
	"go.uber.org/zap"
)

func main() {
	unicode := flag.Bool("unicode", true, "draw pieces as chess glyphs")
	flag.Parse()

	// logs share the terminal with the board, so keep them quiet unless asked
	setDefaultEnv("LOG_TO_CONSOLE", "false")
	setDefaultEnv("LOG_LEVEL", "warn")

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("catalog error: %v", err)
	}

	g, err := game.New(game.Options{
		Factory:                rules.NewFactory(cfg.StartFEN),
		Delay:                  cfg.OpponentDelay,
		InstantReply:           cfg.OpponentDelay == 0,
		AllowMoveWhileThinking: !cfg.BlockWhileThinking,
		Seed:                   cfg.RandomSeed,
		NameOpenings:           cfg.ShowOpening,
		Logger:                 logger,
	})
	if err != nil {
		log.Fatalf("game init error: %v", err)
	}
	defer g.Close()

	presenter := chesspresenter.NewPresenter(chesspresenter.NewFormatter(cat), cfg.Orientation, logger)
	board := termboard.New(termboard.Options{Orientation: cfg.Orientation, Unicode: *unicode})
	meta := chesspresenter.SessionMeta{Nickname: petname.Generate(2, "-")}

	r := newREPL(g, presenter, board, meta, os.Stdout, logger)
	if err := r.run(os.Stdin); err != nil {
		logger.Error("repl_input_failed", zap.Error(err))
	}
}

func setDefaultEnv(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		_ = os.Setenv(key, value)
	}
}
