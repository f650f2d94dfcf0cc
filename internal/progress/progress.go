package progress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampFormat renders e.g. "2024-Mar-05-14:07:09".
const TimestampFormat = "2006-Jan-02-15:04:05"

const separator = " : "

// Milestone messages, in the order a successful run reaches them.
const (
	Started          = "Preliminaries complete. Initiating ETL process"
	Extracted        = "Data extraction complete. Initiating Transformation process"
	Transformed      = "Data transformation complete. Initiating Loading process"
	SavedFile        = "Data saved to CSV file"
	ConnectionOpened = "SQL Connection initiated"
	LoadedTable      = "Data loaded to Database as a table, Executing queries"
	QueriesDone      = "Process Complete"
	ConnectionClosed = "Server Connection closed"
)

// Milestones lists every milestone in run order.
var Milestones = []string{
	Started,
	Extracted,
	Transformed,
	SavedFile,
	ConnectionOpened,
	LoadedTable,
	QueriesDone,
	ConnectionClosed,
}

// Entry is one line of the progress log.
type Entry struct {
	Timestamp time.Time
	Message   string
}

// Log appends timestamped milestone lines to a file.
type Log struct {
	path string
	now  func() time.Time
}

// New returns a Log writing to path.
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one "timestamp : message" line, creating the file if needed.
func (l *Log) Append(message string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening progress log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(MarshalEntry(Entry{Timestamp: l.now(), Message: message}) + "\n"); err != nil {
		return fmt.Errorf("writing progress log: %w", err)
	}
	return nil
}

// Read returns every entry in the log. A missing file yields no entries.
func (l *Log) Read() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading progress log: %w", err)
	}

	var entries []Entry
	for i, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		e, err := UnmarshalEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// MarshalEntry formats an entry without the trailing newline.
func MarshalEntry(e Entry) string {
	return e.Timestamp.Format(TimestampFormat) + separator + e.Message
}

// UnmarshalEntry parses a single log line.
func UnmarshalEntry(line string) (Entry, error) {
	ts, msg, ok := strings.Cut(line, separator)
	if !ok {
		return Entry{}, fmt.Errorf("missing separator in %q", line)
	}
	t, err := time.ParseInLocation(TimestampFormat, ts, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	return Entry{Timestamp: t, Message: msg}, nil
}
