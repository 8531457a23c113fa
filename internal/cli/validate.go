package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/routine/pkg/registry"
)

// Validate loads the plan at path and reports every problem it finds.
// On success it prints a one-line summary to w.
func Validate(path string, w io.Writer) error {
	reg := registry.NewDefault()
	p, err := loadPlan(path, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Plan %q is valid: %d commands, default %q\n", p.Name, len(p.Commands), p.Default.Behavior)
	return nil
}
