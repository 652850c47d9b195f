package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dragsort/pkg/dom"
	"github.com/vango-dev/dragsort/pkg/server"
)

func renderCmd(opts *globalOptions) *cobra.Command {
	var (
		boxes bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the board page or its drag geometry",
		Long: `Parse the configured board and print it.

With --boxes the page is laid out and every container and draggable
is listed with its page box, which is what drop resolution sees.

Examples:
  dragsort render
  dragsort render --boxes --width=1280`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			bc, err := boardConfig(cfg)
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.Server.ViewportWidth
			}

			board, err := server.NewBoard(server.BoardOptions{
				ID:            "render",
				Config:        bc,
				ViewportWidth: float64(width),
				Logger:        logger,
			})
			if err != nil {
				return err
			}
			defer board.Close()

			if boxes {
				return writeBoxes(cmd.OutOrStdout(), board)
			}
			return board.Document().Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&boxes, "boxes", "b", false, "List container and draggable boxes instead of markup")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Viewport width (default from dragsort.json)")

	return cmd
}

// writeBoxes lists the board's containers, then its draggables, with their
// page boxes.
func writeBoxes(w io.Writer, board *server.Board) error {
	sessions := board.Group().Sessions()
	engine := board.Engine()

	seen := make(map[*dom.Element]bool)
	for _, d := range sessions {
		for _, c := range d.Containers() {
			if seen[c] {
				continue
			}
			seen[c] = true
			if err := writeBox(w, "container", c, engine.PageBox); err != nil {
				return err
			}
		}
	}
	for _, d := range sessions {
		if err := writeBox(w, "draggable", d.Element(), engine.PageBox); err != nil {
			return err
		}
		if d.Anchor() != d.Element() {
			if err := writeBox(w, "  anchor", d.Anchor(), engine.PageBox); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeBox(w io.Writer, kind string, el *dom.Element, pageBox func(*dom.Element) (dom.Rect, bool)) error {
	r, ok := pageBox(el)
	if !ok {
		_, err := fmt.Fprintf(w, "%-10s %-24s hidden\n", kind, el)
		return err
	}
	_, err := fmt.Fprintf(w, "%-10s %-24s x=%g y=%g w=%g h=%g\n", kind, el, r.X, r.Y, r.Width, r.Height)
	return err
}
