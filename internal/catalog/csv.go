package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads the catalog from a CSV file on disk.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV parses the tabular catalog format: a header row followed by one
// task per line. Quoted fields may contain embedded commas (quote-toggle
// parsing, no escaped-quote support). Blank or malformed integer values take
// the column default: intensity 1, points 0, duration_minutes and
// target_count nil. Boolean columns are true only for the literal string
// "true". When no id column is present the 0-based data-row index is
// synthesized into "task_<index>".
func ParseCSV(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, ErrEmptyCatalog
	}
	header := splitCSVLine(scanner.Text())
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	_, hasID := col["id"]

	var tasks []Task
	index := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitCSVLine(line)

		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		t := Task{
			ID:               get("id"),
			Category:         get("category"),
			Domain:           get("domain"),
			Intensity:        intOr(get("intensity"), 1),
			Instruction:      get("instruction"),
			Subtext:          get("subtext"),
			Affirmation:      get("affirmation"),
			CompletionType:   CompletionType(get("completion_type")),
			DurationMinutes:  intPtr(get("duration_minutes")),
			TargetCount:      intPtr(get("target_count")),
			Points:           intOr(get("points"), 0),
			IsCore:           get("is_core") == "true",
			TriggerCondition: get("trigger_condition"),
			TimeWindow:       TimeWindow(get("time_window")),
			RequiresPrivacy:  get("requires_privacy") == "true",
		}
		if !hasID || t.ID == "" {
			t.ID = fmt.Sprintf("task_%d", index)
		}
		if t.CompletionType == "" {
			t.CompletionType = CompletionBinary
		}
		if !t.TimeWindow.IsValid() {
			t.TimeWindow = WindowAny
		}
		tasks = append(tasks, t)
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}

	return New(tasks)
}

// splitCSVLine splits on commas outside double quotes. Deliberately simple:
// quotes toggle, embedded commas survive, escaped quotes are not supported.
func splitCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func intOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func intPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
