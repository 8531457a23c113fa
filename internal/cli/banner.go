package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/aretw0/routine/pkg/plan"
	"github.com/muesli/termenv"
)

var bannerArt = []struct {
	line, color string
}{
	{`                 _   _`, "#818cf8"},
	{` _ __ ___  _   _| |_(_)_ __   ___`, "#a78bfa"},
	{`| '__/ _ \| | | | __| | '_ \ / _ \`, "#c084fc"},
	{`| | | (_) | |_| | |_| | | | |  __/`, "#e879f9"},
	{`|_|  \___/ \__,_|\__|_|_| |_|\___|`, "#f472b6"},
}

// printBanner outputs the run header. The ASCII art is only drawn on a terminal.
func printBanner(w io.Writer, p *plan.Plan, runID string, budget, period time.Duration, simulate bool) {
	out := termenv.NewOutput(w)
	if isTerminal(w) {
		fmt.Fprintln(w)
		for _, l := range bannerArt {
			fmt.Fprintln(w, out.String(l.line).Foreground(out.Color(l.color)))
		}
		fmt.Fprintln(w)
	}

	mode := "real time"
	if simulate {
		mode = "simulated"
	}
	fmt.Fprintln(w, out.String(p.Name).Bold())
	fmt.Fprintf(w, "  run      %s\n", runID)
	fmt.Fprintf(w, "  budget   %s at %s per tick (%s)\n", budget, period, mode)
	fmt.Fprintf(w, "  commands %d\n\n", len(p.Commands))
}
