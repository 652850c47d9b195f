package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragsort/internal/errors"
	"github.com/vango-dev/dragsort/pkg/dom"
	"github.com/vango-dev/dragsort/pkg/protocol"
	"github.com/vango-dev/dragsort/pkg/server"
)

func simulateCmd(opts *globalOptions) *cobra.Command {
	var (
		from     string
		to       string
		steps    int
		snapshot bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a drag against the board and print the signals",
		Long: `Press the anchor of one draggable, move the pointer to a target in
a number of steps and release it, then print the signals the board
emitted.

The target is either a page point "x,y" or "#id" for the center of
an element.

Examples:
  dragsort simulate --from card-1 --to '#done'
  dragsort simulate --from card-3 --to 450,10 --steps 4 --snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			bc, err := boardConfig(cfg)
			if err != nil {
				return err
			}

			rec := &recorder{}
			board, err := server.NewBoard(server.BoardOptions{
				ID:            "simulate",
				Config:        bc,
				ViewportWidth: float64(cfg.Server.ViewportWidth),
				Send:          rec.send,
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			defer board.Close()

			if err := simulate(board, from, to, steps); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			for _, s := range rec.Signals {
				writeSignal(out, s)
			}
			if snapshot && rec.Snapshot != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, rec.Snapshot)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Id of the element to drag")
	cmd.Flags().StringVar(&to, "to", "", `Drop target: "x,y" or "#id"`)
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of pointer moves between press and release")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Print the body markup after the drag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print signals and snapshot as JSON")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

// recorder decodes the frames a board sends.
type recorder struct {
	Signals  []*protocol.Signal `json:"signals"`
	Snapshot string             `json:"snapshot,omitempty"`
}

func (r *recorder) send(f *protocol.Frame) error {
	switch f.Type {
	case protocol.FrameSignal:
		s, err := protocol.DecodeSignal(f.Payload)
		if err != nil {
			return err
		}
		r.Signals = append(r.Signals, s)
	case protocol.FrameSnapshot:
		s, err := protocol.DecodeSnapshot(f.Payload)
		if err != nil {
			return err
		}
		r.Snapshot = s.HTML
	}
	return nil
}

// simulate presses the anchor of #from at its center, moves to the target
// in steps and releases there.
func simulate(board *server.Board, from, to string, steps int) error {
	id := strings.TrimPrefix(from, "#")
	el := board.Document().GetElementByID(id)
	if el == nil {
		return errors.New("E140").WithDetailf("no element #%s", id)
	}
	d := board.Group().Session(el)
	if d == nil {
		return errors.New("E140").
			WithDetailf("#%s is not draggable", id).
			WithSuggestion("Check board.elements in dragsort.json")
	}
	box, ok := board.Engine().PageBox(d.Anchor())
	if !ok {
		return errors.New("E140").WithDetailf("the anchor of #%s is not rendered", id)
	}
	start := box.Center()

	end, err := resolvePoint(board, to)
	if err != nil {
		return err
	}
	if steps < 1 {
		steps = 1
	}

	var seq uint64
	dispatch := func(typ protocol.EventType, target string, p dom.Point) error {
		seq++
		ev := protocol.NewPointerEvent(seq, typ, target, int64(math.Round(p.X)), int64(math.Round(p.Y)))
		return board.HandleEvent(ev)
	}

	if err := dispatch(protocol.EventMouseDown, d.Anchor().ID(), start); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := dom.Point{X: start.X + (end.X-start.X)*t, Y: start.Y + (end.Y-start.Y)*t}
		if err := dispatch(protocol.EventMouseMove, "", p); err != nil {
			return err
		}
	}
	return dispatch(protocol.EventMouseUp, "", end)
}

// resolvePoint parses "x,y" or "#id".
func resolvePoint(board *server.Board, s string) (dom.Point, error) {
	if id, ok := strings.CutPrefix(s, "#"); ok {
		el := board.Document().GetElementByID(id)
		if el == nil {
			return dom.Point{}, errors.New("E140").WithDetailf("no element #%s", id)
		}
		r, ok := board.Engine().PageBox(el)
		if !ok {
			return dom.Point{}, errors.New("E140").WithDetailf("#%s is not rendered", id)
		}
		return r.Center(), nil
	}

	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return dom.Point{}, errors.New("E140").
			WithDetailf("bad target %q", s).
			WithSuggestion(`Use "x,y" or "#id"`)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return dom.Point{}, errors.New("E140").
			WithDetailf("bad target %q", s).
			WithSuggestion(`Use "x,y" or "#id"`)
	}
	return dom.Point{X: x, Y: y}, nil
}

func writeSignal(w io.Writer, s *protocol.Signal) {
	fmt.Fprintf(w, "%3d %-15s #%s (%d,%d)", s.Seq, s.Name, s.Element, s.X, s.Y)
	switch {
	case s.Index >= 0:
		fmt.Fprintf(w, " -> #%s[%d]", s.Container, s.Index)
	case s.Container != "":
		fmt.Fprintf(w, " over #%s", s.Container)
	}
	fmt.Fprintln(w)
}
