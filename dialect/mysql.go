package dialect

// MySQL dialect implementation
type mysql struct{}

func (d *mysql) Name() string { return "mysql" }

func (d *mysql) Quote(name string) string {
	return quoteIdent(name, "`", "`")
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

func (d *mysql) SingleRow() (string, string) {
	return "", "LIMIT 1"
}
