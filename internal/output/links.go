package output

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codalotl/checkdeck/internal/q/ansitext"
)

// Link is one file:line[:col] occurrence in decoded output. Row indexes into the rows that were scanned; Start and End are byte offsets into that row's
// plain text. Line and col are as printed by the tool (1-based by convention); Col is 0 when the tool printed none.
type Link struct {
	File  string
	Line  int
	Col   int
	Row   int
	Start int
	End   int
}

// Links scans each row's plain text for references to the known project files. File names match literally (regex metacharacters escaped), longest name
// first.
func Links(rows [][]ansitext.Span, files []string) []Link {
	re := linkPattern(files)
	if re == nil {
		return nil
	}

	var links []Link
	for rowIdx, row := range rows {
		plain := ansitext.Text(row)
		if !strings.Contains(plain, ":") {
			continue
		}

		for _, m := range re.FindAllStringSubmatchIndex(plain, -1) {
			link := Link{
				File:  plain[m[2]:m[3]],
				Row:   rowIdx,
				Start: m[0],
				End:   m[1],
			}
			link.Line, _ = strconv.Atoi(plain[m[4]:m[5]])
			if m[6] >= 0 {
				link.Col, _ = strconv.Atoi(plain[m[6]:m[7]])
			}
			links = append(links, link)
		}
	}
	return links
}

// linkPattern builds the scanning regexp for the given file names, or nil when there are none.
func linkPattern(files []string) *regexp.Regexp {
	if len(files) == 0 {
		return nil
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			names = append(names, f)
		}
	}
	if len(names) == 0 {
		return nil
	}

	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}

	return regexp.MustCompile(`(` + strings.Join(quoted, "|") + `):([0-9]+)(?::([0-9]+))?`)
}
