package dialect

import (
	"strings"
	"sync"
)

// Dialect represents the database-specific parts of statement generation.
// Each database (MySQL, SQLite, etc.) must implement this interface to be supported.
type Dialect interface {
	// Name returns the canonical dialect name
	Name() string
	// Quote wraps a name (table or column) in database-specific quotes
	Quote(name string) string
	// Placeholder returns the bind marker for the 1-based parameter index
	Placeholder(index int) string
	// SingleRow returns the text placed after SELECT and at the end of the
	// statement to restrict it to one row
	SingleRow() (top string, limit string)
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// Register registers a new dialect for a given driver name
func Register(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name
func Get(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

func init() {
	Register("mysql", &mysql{})
	Register("postgres", &postgres{})
	Register("pgx", &postgres{})
	Register("sqlite3", &sqlite3{})
	Register("sqlite", &sqlite3{})
	Register("sqlserver", &sqlserver{})
}

// quoteIdent quotes each dot-separated segment of name, doubling any
// closing quote characters inside a segment.
func quoteIdent(name string, open, close string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = open + strings.ReplaceAll(p, close, close+close) + close
	}
	return strings.Join(parts, ".")
}
