package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var assTagRegex = regexp.MustCompile(`\{[^}]*\}`)

// parseASS reads Dialogue events. Override tags are dropped and \N breaks
// become newlines; styles and other sections are ignored.
func parseASS(r io.Reader) (*Subtitle, error) {
	scanner := bufio.NewScanner(r)

	var (
		entries       []Entry
		formatColumns []string
		inEvents      bool
		startIdx      = -1
		endIdx        = -1
		textIdx       = -1
		lineNum       int
	)

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(strings.Trim(trimmed, "[]"))
			inEvents = section == "events"
			continue
		}
		if !inEvents {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "Format:"):
			formatColumns = strings.Split(strings.TrimPrefix(trimmed, "Format:"), ",")
			for i, col := range formatColumns {
				switch strings.ToLower(strings.TrimSpace(col)) {
				case "start":
					startIdx = i
				case "end":
					endIdx = i
				case "text":
					textIdx = i
				}
			}
			if textIdx == -1 || startIdx == -1 || endIdx == -1 {
				return nil, fmt.Errorf("ASS Format line missing Start, End or Text column")
			}

		case strings.HasPrefix(trimmed, "Dialogue:"):
			if formatColumns == nil {
				return nil, fmt.Errorf("dialogue before Format line at line %d", lineNum)
			}
			content := strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:"))
			fields := splitASSFields(content, len(formatColumns))
			if len(fields) < len(formatColumns) {
				return nil, fmt.Errorf(
					"failed to parse Dialogue at line %d: expected %d fields, got %d",
					lineNum,
					len(formatColumns),
					len(fields),
				)
			}

			text := assTagRegex.ReplaceAllString(fields[textIdx], "")
			text = strings.ReplaceAll(text, "\\N", "\n")
			text = strings.ReplaceAll(text, "\\n", "\n")
			text = strings.ReplaceAll(text, "\\h", " ")

			entries = append(entries, Entry{
				Index:     len(entries) + 1,
				StartTime: parseASSTimestamp(fields[startIdx]),
				EndTime:   parseASSTimestamp(fields[endIdx]),
				Text:      text,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS file: %w", err)
	}
	if formatColumns == nil {
		return nil, fmt.Errorf("ASS file missing Format line in [Events] section")
	}

	return &Subtitle{Entries: entries, Format: string(FormatASS)}, nil
}

// splits on the first numFields-1 commas; the last field keeps its commas
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}
	return strings.SplitN(content, ",", numFields)
}

// H:MM:SS.cc; malformed timestamps read as zero
func parseASSTimestamp(ts string) time.Duration {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0
	}
	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0
	}

	var values [4]int
	for i, s := range []string{parts[0], parts[1], secParts[0], secParts[1]} {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		values[i] = v
	}

	return time.Duration(values[0])*time.Hour +
		time.Duration(values[1])*time.Minute +
		time.Duration(values[2])*time.Second +
		time.Duration(values[3])*10*time.Millisecond
}
