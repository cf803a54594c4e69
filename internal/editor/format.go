package editor

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// formatWidth is the column width under which arrays stay on one line.
const formatWidth = 80

// FormatJSON pretty-prints a JSON block's content with indent as the
// indentation unit. Trailing newlines of content are kept as they are.
func FormatJSON(content, indent string) (string, error) {
	body := strings.TrimRight(content, "\n")
	if !gjson.Valid(body) {
		return "", ErrNotJSON
	}
	out := pretty.PrettyOptions([]byte(body), &pretty.Options{
		Width:  formatWidth,
		Indent: indent,
	})
	return strings.TrimRight(string(out), "\n") + content[len(body):], nil
}
