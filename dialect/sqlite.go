package dialect

// SQLite dialect implementation, shared by mattn/go-sqlite3 and modernc.org/sqlite
type sqlite3 struct{}

func (d *sqlite3) Name() string { return "sqlite3" }

func (d *sqlite3) Quote(name string) string {
	return quoteIdent(name, "`", "`")
}

func (d *sqlite3) Placeholder(index int) string {
	return "?"
}

func (d *sqlite3) SingleRow() (string, string) {
	return "", "LIMIT 1"
}
