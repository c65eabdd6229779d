package pretty

import (
	"strings"

	"github.com/yaklabco/docrender/pkg/highlight"
)

// FormatCode prints highlighted runs. Each line is styled separately so
// that escapes never span a newline.
func (s *Styles) FormatCode(code []highlight.Run) string {
	var b strings.Builder
	for _, run := range code {
		st := s.textStyle(run.Style, false)
		for i, line := range strings.Split(run.Text, "\n") {
			if i > 0 {
				b.WriteString("\n")
			}
			if line != "" {
				b.WriteString(st.Render(line))
			}
		}
	}
	return b.String()
}
