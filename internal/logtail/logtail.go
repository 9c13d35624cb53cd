package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Read returns at most maxLines from the end of the file at path. A maxLines
// of zero or less returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Attr is one key/value pair of a log record beyond time, level and message.
type Attr struct {
	Key   string
	Value string
}

// Record is a parsed slog JSON line.
type Record struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   []Attr
}

// Parse decodes a slog JSON record. Lines that are not JSON objects are
// reported with ok=false.
func Parse(line string) (rec Record, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return Record{}, false
	}
	gjson.Parse(trimmed).ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "time":
			rec.Time, _ = time.Parse(time.RFC3339Nano, value.String())
		case "level":
			rec.Level = strings.ToUpper(value.String())
		case "msg":
			rec.Message = value.String()
		default:
			rec.Attrs = append(rec.Attrs, Attr{Key: key.String(), Value: value.String()})
		}
		return true
	})
	return rec, true
}

// Format renders a log line for the terminal: JSON records become
// "15:04:05 LEVEL message key=value ...", anything else is returned as is.
func Format(line string) string {
	rec, ok := Parse(line)
	if !ok {
		return line
	}
	var b strings.Builder
	if !rec.Time.IsZero() {
		b.WriteString(rec.Time.Local().Format(time.TimeOnly))
		b.WriteString(" ")
	}
	if rec.Level != "" {
		b.WriteString(rec.Level)
		b.WriteString(" ")
	}
	b.WriteString(rec.Message)
	for _, a := range rec.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		if strings.ContainsAny(a.Value, " \t") {
			b.WriteString(fmt.Sprintf("%q", a.Value))
		} else {
			b.WriteString(a.Value)
		}
	}
	return b.String()
}
