package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/crackinspine82/RattoMatt-sub001/core"
	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
	"github.com/crackinspine82/RattoMatt-sub001/storage/database"
)

// OpenDB returns a migrated in-memory SQLite database, closed when the test ends.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return db
}

// CreateNode inserts a syllabus node. An empty id gets a new UUID; a nil parent makes a root.
func CreateNode(t *testing.T, db *sqlx.DB, chapterID, id string, parentID *string, seq int, title string) syllabus.Node {
	t.Helper()

	if id == "" {
		id = uuid.NewString()
	}
	_, err := db.Exec(
		db.Rebind(`INSERT INTO syllabus_nodes (id, chapter_id, parent_id, sequence_number, title) VALUES (?, ?, ?, ?, ?)`),
		id, chapterID, null.StringFromPtr(parentID), seq, title,
	)
	if err != nil {
		t.Fatalf("CreateNode() failed: %v", err)
	}
	return syllabus.Node{ID: id, ParentID: parentID, SequenceNumber: seq, ChapterID: chapterID, Title: title}
}

func StrPtr(s string) *string {
	return &s
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log entries for assertions.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

// Count returns how many entries were logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
