// Package sanitize turns raw model text into bare command strings.
package sanitize

import (
	"regexp"
	"strings"
)

var fencedBash = regexp.MustCompile("(?s)```bash\n(.*?)\n```")

// Clean strips markdown artifacts from a translator-mode response. The input
// is assumed to be (at most) one fenced command; surrounding prose is not
// handled here, that is ExtractFencedCommand's job.
//
// An empty result means no command was produced, not a valid empty command.
func Clean(raw string) string {
	command := strings.TrimSpace(raw)

	if strings.HasPrefix(command, "```") && strings.HasSuffix(command, "```") {
		lines := strings.Split(command, "\n")
		if len(lines) > 1 {
			// First line carries the fence (and maybe a language tag),
			// last line closes it.
			kept := make([]string, 0, len(lines)-2)
			for _, line := range lines[1 : len(lines)-1] {
				if strings.TrimSpace(line) != "" {
					kept = append(kept, line)
				}
			}
			command = strings.Join(kept, " ")
		} else {
			command = strings.Trim(command, "`")
		}
	}

	if strings.HasPrefix(command, "`") && strings.HasSuffix(command, "`") {
		command = strings.Trim(command, "`")
	}

	return command
}

// ExtractFencedCommand pulls a shell command out of conversational prose:
// the interior of the first ```bash block, trimmed. Returns "" when the
// response carries no such block.
func ExtractFencedCommand(response string) string {
	match := fencedBash.FindStringSubmatch(response)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
