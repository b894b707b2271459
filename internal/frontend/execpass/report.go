package execpass

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"unitc/internal/failure"
)

var (
	// /src/A.groovy: 3: Unexpected input: '}' @ line 3, column 1.
	syntaxLineRe = regexp.MustCompile(`^(.+?): (\d+): (.*@ line (\d+), column (\d+)\.)\s*$`)
	// /src/A.java:12: error: cannot find symbol
	javacLineRe  = regexp.MustCompile(`^(.+?\.(?:java|groovy)):(\d+): (error|warning): (.*)$`)
	errorCountRe = regexp.MustCompile(`^\d+ errors?$`)
)

const startupFailed = "startup failed:"

// report is what a compiler run printed, split into failure causes and
// warnings.
type report struct {
	causes   []*failure.Failure
	warnings []string
}

// parseOutput reads combined compiler output.
//
// Syntax lines become syntax failures. javac-style "path:line: error:" lines
// become runtime failures located at the line. "warning:" lines become
// warnings. Inside a "startup failed:" block any other unindented line is a
// plain failure; indented lines (source echo, carets, stack frames) are
// skipped.
func parseOutput(out []byte) report {
	var (
		r       report
		inBlock bool
	)
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasSuffix(trimmed, startupFailed):
			inBlock = true
		case isWarning(trimmed):
			r.warnings = append(r.warnings, warningText(trimmed))
		case syntaxLineRe.MatchString(trimmed):
			m := syntaxLineRe.FindStringSubmatch(trimmed)
			r.causes = append(r.causes, failure.Syntax(m[3], m[1], atoi(m[4]), atoi(m[5])))
		case javacLineRe.MatchString(trimmed):
			m := javacLineRe.FindStringSubmatch(trimmed)
			if m[3] == "warning" {
				r.warnings = append(r.warnings, m[4])
				continue
			}
			r.causes = append(r.causes, failure.Runtime(m[4], m[1], &failure.Node{Line: atoi(m[2]), Column: -1}))
		case !inBlock, line != trimmed, errorCountRe.MatchString(trimmed):
			continue
		default:
			r.causes = append(r.causes, failure.Plain(trimmed))
		}
	}
	return r
}

func isWarning(line string) bool {
	return len(line) >= len("warning:") && strings.EqualFold(line[:len("warning:")], "warning:")
}

func warningText(line string) string {
	return strings.TrimSpace(line[len("warning:"):])
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
