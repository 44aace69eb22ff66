package timeline

import (
	"fmt"
	"io"
	"strings"
)

const (
	markerOK     = "○"
	markerFailed = "●"

	colorRed   = "\033[31m"
	colorDim   = "\033[2m"
	colorReset = "\033[0m"
)

// Render writes the timeline to w, one node per entry in server order.
// Zero nodes produce an explicit placeholder so an empty log is
// distinguishable from one still loading.
func Render(w io.Writer, nodes []Node, noColor bool) {
	if len(nodes) == 0 {
		fmt.Fprintln(w, "No logs generated yet...")
		return
	}

	for _, node := range nodes {
		marker := markerOK
		if node.Failed {
			marker = markerFailed
			if !noColor {
				marker = colorRed + marker + colorReset
			}
		}

		stamp := node.Timestamp.Format("2006-01-02 15:04:05")
		if noColor {
			fmt.Fprintf(w, "%s %s  %s\n", marker, node.Event, stamp)
		} else {
			fmt.Fprintf(w, "%s %s  %s%s%s\n", marker, node.Event, colorDim, stamp, colorReset)
		}

		switch node.Detail.Kind {
		case DetailStructured:
			for _, line := range strings.Split(node.Detail.Block, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		case DetailText:
			fmt.Fprintf(w, "    %s\n", node.Detail.Text)
		}
	}
}
