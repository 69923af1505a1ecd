package main

import (
	"fmt"
	"io"
	"strings"
)

// printSummary writes the end-of-run report.
func printSummary(w io.Writer, s *Summary, dryRun bool) {
	var builder strings.Builder
	builder.WriteString("--- Summary ---\n")
	builder.WriteString(fmt.Sprintf("Directories scanned: %d\n", s.Dirs.Load()))
	builder.WriteString(fmt.Sprintf("Component files checked: %d\n", s.Components.Load()))
	if dryRun {
		builder.WriteString(fmt.Sprintf("References that would be inlined: %d\n", s.Inlined.Load()))
	} else {
		builder.WriteString(fmt.Sprintf("Component files rewritten: %d\n", s.Rewritten.Load()))
		builder.WriteString(fmt.Sprintf("References inlined: %d\n", s.Inlined.Load()))
	}
	if failed := s.Failed.Load(); failed > 0 {
		builder.WriteString(fmt.Sprintf("References failed: %d\n", failed))
	}
	fmt.Fprint(w, builder.String())
}
