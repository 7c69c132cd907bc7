package runner

import (
	"fmt"
	"io"
)

// Print 输出逐项结果与汇总
func (r *Report) Print(w io.Writer) {
	for i, res := range r.Results {
		fmt.Fprintf(w, "\n[Check %d/%d] %s\n", i+1, len(r.Results), res.Name)
		fmt.Fprintln(w, "----------------------------------------")
		if res.OK {
			fmt.Fprintf(w, "✅ PASSED: %s\n", res.Details)
		} else {
			fmt.Fprintf(w, "❌ FAILED: %s\n", res.Details)
		}
		fmt.Fprintf(w, "⏱️  Duration: %v\n", res.Duration)
	}

	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "  Regression Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total: %d\n", len(r.Results))
	fmt.Fprintf(w, "Passed: %d ✅\n", r.Passed)
	fmt.Fprintf(w, "Failed: %d ❌\n", r.Failed)
}
