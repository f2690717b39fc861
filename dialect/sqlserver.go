package dialect

import "strconv"

type sqlserver struct{}

func (d *sqlserver) Name() string { return "sqlserver" }

func (d *sqlserver) Quote(name string) string {
	return quoteIdent(name, "[", "]")
}

func (d *sqlserver) Placeholder(index int) string {
	return "@p" + strconv.Itoa(index)
}

// SQL Server has no LIMIT; TOP goes right after SELECT.
func (d *sqlserver) SingleRow() (string, string) {
	return "TOP 1", ""
}
