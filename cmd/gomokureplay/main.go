// gomokureplay - replay a Gomoku move list and print its status or model encoding
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomokuzero/internal/config"
	"github.com/yourusername/gomokuzero/pkg/api"
	"github.com/yourusername/gomokuzero/pkg/engine"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "status":
		err = cmdStatus(cfg, args)
	case "encode":
		err = cmdEncode(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("failed")
	}
}

func printUsage() {
	fmt.Println(`gomokureplay - replay a Gomoku game from the empty board

Usage: gomokureplay <command> [options]

Commands:
  status    Print winner/tie/in-progress and the available cells
  encode    Print the model input encoding of the final position
  config    Print the effective configuration (-save writes it to the XDG config file)

Use "gomokureplay <command> -h" for command-specific help.

Move Format:
  -moves takes comma separated cell indices, index = row*width + col.
  -locations takes row:col pairs, e.g. "3:4,2:4".`)
}

// replayFlags are the flags shared by the replay commands.
type replayFlags struct {
	board     engine.Config
	start     int
	moves     string
	locations string
}

func addReplayFlags(fs *flag.FlagSet, cfg config.Config) *replayFlags {
	rf := &replayFlags{board: cfg.Board}
	fs.IntVar(&rf.board.Width, "width", cfg.Board.Width, "Board width")
	fs.IntVar(&rf.board.Height, "height", cfg.Board.Height, "Board height")
	fs.IntVar(&rf.board.NInRow, "n", cfg.Board.NInRow, "Stones in a row to win")
	fs.BoolVar(&rf.board.ForbiddenHands, "forbidden", cfg.Board.ForbiddenHands, "Apply the forbidden-move rule to the first mover")
	fs.IntVar(&rf.start, "start", 0, "First mover: 0 = player 1, 1 = player 2")
	fs.StringVar(&rf.moves, "moves", "", "Comma separated cell indices")
	fs.StringVar(&rf.locations, "locations", "", "Comma separated row:col pairs")
	return rf
}

// replay plays the moves on a fresh board, stopping with an error if a move
// follows the end of the game.
func (rf *replayFlags) replay() (*engine.Board, error) {
	b, err := engine.NewBoard(rf.board)
	if err != nil {
		return nil, err
	}
	if err := b.Init(rf.start); err != nil {
		return nil, err
	}

	moves, err := rf.moveList(b.Grid())
	if err != nil {
		return nil, err
	}
	for i, m := range moves {
		if over, winner := b.GameEnd(); over {
			return nil, fmt.Errorf("move %d (cell %d): game already over, winner %d", i, m, winner)
		}
		if err := b.ApplyMove(m); err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}
		log.Debug().Int("move", i).Int("cell", m).Int("next", int(b.CurrentPlayer())).Msg("applied")
	}
	return b, nil
}

func (rf *replayFlags) moveList(g engine.Grid) ([]int, error) {
	if rf.moves != "" && rf.locations != "" {
		return nil, errors.New("-moves and -locations are mutually exclusive")
	}
	if rf.locations != "" {
		return parseLocations(g, rf.locations)
	}
	return parseMoves(rf.moves)
}

func parseMoves(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	moves := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}
		moves[i] = n
	}
	return moves, nil
}

func parseLocations(g engine.Grid, s string) ([]int, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	moves := make([]int, len(parts))
	for i, p := range parts {
		rc := strings.Split(strings.TrimSpace(p), ":")
		loc := make([]int, len(rc))
		for j, v := range rc {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("location %d: %w", i, err)
			}
			loc[j] = n
		}
		idx := g.LocationToIndex(loc)
		if idx == engine.InvalidIndex {
			return nil, fmt.Errorf("location %d: %q is not a row:col on a %dx%d board", i, p, g.Width, g.Height)
		}
		moves[i] = idx
	}
	return moves, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdStatus(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	rf := addReplayFlags(fs, cfg)
	fs.Parse(args)

	b, err := rf.replay()
	if err != nil {
		return err
	}
	threes, fours := b.ForbiddenCounts()
	log.Debug().Int("threes", threes).Int("fours", fours).Msg("shapes through last move")
	return printJSON(api.NewPositionResponse(b))
}

func cmdEncode(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	rf := addReplayFlags(fs, cfg)
	variantName := fs.String("variant", "last_move", "Encoding: last_move (4 layers) or history (19 layers)")
	flat := fs.Bool("flat", false, "Print a flat float32 array in (layer, row, col) order")
	fs.Parse(args)

	variant, err := engine.ParseVariant(*variantName)
	if err != nil {
		return err
	}
	b, err := rf.replay()
	if err != nil {
		return err
	}
	t, err := b.Encode(variant)
	if err != nil {
		return err
	}
	if *flat {
		return printJSON(t.Float32())
	}
	layers, height, width := t.Shape()
	return printJSON(api.EncodeResponse{
		Variant: variant.String(),
		Shape:   [3]int{layers, height, width},
		Planes:  t.Nested(),
	})
}

func cmdConfig(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Write the configuration to the XDG config file")
	fs.Parse(args)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if *save {
		path, err := cfg.Save()
		if err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config saved")
	}
	return printJSON(cfg)
}
