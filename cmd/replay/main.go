// Command replay runs a script of board commands against an in-process unit
// service and prints the result of each line.
//
// Script format, one command per line:
//
//	PLACE 0,0,NORTH
//	MOVE
//	LEFT
//	RIGHT
//	REPORT
//	REMOVE
//
// Blank lines and lines starting with # are skipped. Keywords are
// case-insensitive; orientations are not. Invalid lines and commands issued
// before a placement are reported and the script continues.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/toy-robot/game/engine"
	"github.com/wricardo/toy-robot/game/service"
	"github.com/wricardo/toy-robot/game/store"
	"github.com/wricardo/toy-robot/validate"
)

var ErrInvalidScript = errors.New("script contains invalid lines")

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Run a toy robot command script",
		ArgsUsage: "[FILE...] (reads stdin when no file or - is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Value: store.DriverMemory, Usage: "State store driver: memory or sqlite"},
			&cli.StringFlag{Name: "dsn", Value: ":memory:", Usage: "SQLite data source"},
			&cli.BoolFlag{Name: "strict", Usage: "Exit with an error when any line is invalid"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, err := store.Open(cmd.String("store"), cmd.String("dsn"))
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			runner := &Runner{service: service.NewUnitService(st), out: out}

			files := cmd.Args().Slice()
			if len(files) == 0 {
				files = []string{"-"}
			}

			var total Summary
			for _, name := range files {
				sum, err := runFile(ctx, runner, name)
				if err != nil {
					return err
				}
				total.add(sum)
			}

			fmt.Fprintf(out, "%d lines: %d executed, %d not placed, %d invalid\n",
				total.Lines, total.Executed, total.NotPlaced, total.Invalid)

			if cmd.Bool("strict") && total.Invalid > 0 {
				return ErrInvalidScript
			}
			return nil
		},
	}
}

func runFile(ctx context.Context, runner *Runner, name string) (Summary, error) {
	if name == "-" {
		return runner.Run(ctx, os.Stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	return runner.Run(ctx, f)
}

// Summary counts what happened to each script line
type Summary struct {
	Lines     int
	Executed  int
	NotPlaced int
	Invalid   int
}

func (s *Summary) add(o Summary) {
	s.Lines += o.Lines
	s.Executed += o.Executed
	s.NotPlaced += o.NotPlaced
	s.Invalid += o.Invalid
}

// Runner feeds script lines to a unit service
type Runner struct {
	service service.UnitService
	out     io.Writer
}

// Run executes every command in the script. Only store failures stop it.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Summary, error) {
	var sum Summary

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sum.Lines++

		inst, err := parseLine(line)
		if err != nil {
			sum.Invalid++
			fmt.Fprintf(r.out, "line %d: invalid: %v\n", lineNo, err)
			continue
		}

		result, err := inst.execute(ctx, r.service)
		switch {
		case errors.Is(err, engine.ErrNotPlaced):
			sum.NotPlaced++
			fmt.Fprintf(r.out, "line %d: %s\n", lineNo, engine.NotPlacedMessage)
		case err != nil:
			return sum, fmt.Errorf("line %d: %w", lineNo, err)
		default:
			sum.Executed++
			fmt.Fprintf(r.out, "line %d: %s\n", lineNo, result.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read script: %w", err)
	}
	return sum, nil
}

// instruction is one parsed script line
type instruction struct {
	action engine.Action
	dir    engine.Direction
	place  service.PlaceCommand
}

func (i instruction) execute(ctx context.Context, svc service.UnitService) (*service.CommandResult, error) {
	switch i.action {
	case engine.ActionPlace:
		return svc.Place(ctx, i.place)
	case engine.ActionRotate:
		return svc.Rotate(ctx, i.dir)
	case engine.ActionMove:
		return svc.Move(ctx)
	case engine.ActionReport:
		return svc.Report(ctx)
	case engine.ActionRemove:
		return svc.Remove(ctx)
	default:
		return nil, fmt.Errorf("unknown action %q", i.action)
	}
}

func parseLine(line string) (instruction, error) {
	keyword, rest, _ := strings.Cut(line, " ")
	keyword = strings.ToUpper(keyword)
	rest = strings.TrimSpace(rest)

	switch keyword {
	case "PLACE":
		return parsePlace(rest)
	case "MOVE":
		return bare(engine.ActionMove, keyword, rest)
	case "LEFT":
		inst, err := bare(engine.ActionRotate, keyword, rest)
		inst.dir = engine.Left
		return inst, err
	case "RIGHT":
		inst, err := bare(engine.ActionRotate, keyword, rest)
		inst.dir = engine.Right
		return inst, err
	case "REPORT":
		return bare(engine.ActionReport, keyword, rest)
	case "REMOVE":
		return bare(engine.ActionRemove, keyword, rest)
	default:
		return instruction{}, fmt.Errorf("unknown command %q", keyword)
	}
}

func bare(action engine.Action, keyword, rest string) (instruction, error) {
	if rest != "" {
		return instruction{}, fmt.Errorf("%s takes no arguments", keyword)
	}
	return instruction{action: action}, nil
}

// parsePlace reads "x,y,FACE" and checks it with the HTTP validation rules
func parsePlace(args string) (instruction, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return instruction{}, errors.New("PLACE expects x,y,FACE")
	}

	var coords [2]int
	for i, p := range parts[:2] {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return instruction{}, fmt.Errorf("coordinate %q is not an integer", strings.TrimSpace(p))
		}
		coords[i] = n
	}
	face := strings.TrimSpace(parts[2])

	cmd, err := validate.PlaceRequest{X: &coords[0], Y: &coords[1], Face: &face}.Command()
	if err != nil {
		return instruction{}, err
	}
	return instruction{action: engine.ActionPlace, place: cmd}, nil
}
