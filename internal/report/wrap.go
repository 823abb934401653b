package report

import (
	"regexp"
	"strings"
)

var (
	fromClause  = regexp.MustCompile(`(?i)\s*\bfrom\s+`)
	whereClause = regexp.MustCompile(`(?i)\s*\bwhere\s+`)
	joinClause  = regexp.MustCompile(`(?i)\s*\b(left outer join|left join|inner join|join)\s+`)
)

// WrapSQL lays out sql for display: FROM, WHERE and each JOIN start a new line
// and no line is longer than width unless a single token is.
func WrapSQL(sql string, width int) string {
	s := fromClause.ReplaceAllString(sql, "\nFROM ")
	s = whereClause.ReplaceAllString(s, "\nWHERE ")
	s = joinClause.ReplaceAllStringFunc(s, func(m string) string {
		return "\n" + strings.ToUpper(strings.Join(strings.Fields(m), " ")) + " "
	})

	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		cur   strings.Builder
	)
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	return append(lines, cur.String())
}
