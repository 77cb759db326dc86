// Package console implements the interactive terminal client: browse the
// story-arc tables, inspect their structure through the metadata
// pipeline, and run guarded inserts, updates and deletes.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
	"github.com/kdutta/mysqlmeta/internal/logger"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

type columnKind int

const (
	kindString columnKind = iota
	kindInt
)

type columnDef struct {
	name string
	kind columnKind
}

type tableDef struct {
	name    string
	key     string // column used to address rows in updates and deletes
	columns []columnDef
}

// tables is the fixed schema the console operates on.
var tables = []tableDef{
	{name: "hero", key: "name", columns: characterColumns()},
	{name: "ally", key: "name", columns: characterColumns()},
	{name: "villain", key: "name", columns: characterColumns()},
	{name: "arc", key: "arc", columns: []columnDef{
		{"arc", kindInt}, {"title", kindString},
	}},
	{name: "power", key: "name", columns: []columnDef{
		{"arc", kindInt}, {"name", kindString}, {"ability", kindString},
	}},
}

func characterColumns() []columnDef {
	return []columnDef{
		{"arc", kindInt}, {"name", kindString}, {"surname", kindString},
		{"age", kindInt}, {"ability", kindString}, {"strength", kindString},
	}
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS arc (arc INT NOT NULL, title VARCHAR(60) NOT NULL, PRIMARY KEY (arc))`,
	`CREATE TABLE IF NOT EXISTS hero (arc INT NOT NULL, name VARCHAR(40) NOT NULL, surname VARCHAR(40), age INT, ability VARCHAR(60), strength VARCHAR(60), PRIMARY KEY (name), CONSTRAINT fk_hero_arc FOREIGN KEY (arc) REFERENCES arc (arc))`,
	`CREATE TABLE IF NOT EXISTS ally (arc INT NOT NULL, name VARCHAR(40) NOT NULL, surname VARCHAR(40), age INT, ability VARCHAR(60), strength VARCHAR(60), PRIMARY KEY (name), CONSTRAINT fk_ally_arc FOREIGN KEY (arc) REFERENCES arc (arc))`,
	`CREATE TABLE IF NOT EXISTS villain (arc INT NOT NULL, name VARCHAR(40) NOT NULL, surname VARCHAR(40), age INT, ability VARCHAR(60), strength VARCHAR(60), PRIMARY KEY (name), CONSTRAINT fk_villain_arc FOREIGN KEY (arc) REFERENCES arc (arc))`,
	`CREATE TABLE IF NOT EXISTS power (arc INT NOT NULL, name VARCHAR(40) NOT NULL, ability VARCHAR(60), PRIMARY KEY (name), CONSTRAINT fk_power_arc FOREIGN KEY (arc) REFERENCES arc (arc))`,
}

// Console drives the interactive session. Input and output are injected
// so the loop is testable without a terminal.
type Console struct {
	db             database.DB
	meta           *meta.Metadata
	in             *bufio.Scanner
	out            io.Writer
	log            *logger.Logger
	deletePassword string
}

// New builds a console over an open connection.
func New(db database.DB, md *meta.Metadata, in io.Reader, out io.Writer, log *logger.Logger, deletePassword string) *Console {
	return &Console{
		db:             db,
		meta:           md,
		in:             bufio.NewScanner(in),
		out:            out,
		log:            log,
		deletePassword: deletePassword,
	}
}

// EnsureSchema creates the story-arc tables when missing.
func (c *Console) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := c.db.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Run loops over the menu until the user quits or input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.printMenu()
		choice, ok := c.prompt("> ")
		if !ok {
			return nil
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1", "2", "3", "4", "5":
			idx := int(choice[0] - '1')
			err = c.showTable(ctx, tables[idx])
		case "6":
			err = c.showJoined(ctx)
		case "d", "describe":
			err = c.describeTable(ctx)
		case "7":
			err = c.insertRow(ctx)
		case "8":
			err = c.updateRow(ctx)
		case "9":
			err = c.deleteRow(ctx)
		case "10", "q", "quit", "exit":
			fmt.Fprintln(c.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown option.")
		}

		if err != nil {
			if errs.IsTimeout(err) || errs.IsConnectionFailed(err) {
				return err
			}
			c.log.With().Err(err).Logger().Error("console operation failed")
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

func (c *Console) printMenu() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "=== Story Arc Database ===")
	fmt.Fprintln(c.out, " 1. Show heroes")
	fmt.Fprintln(c.out, " 2. Show allies")
	fmt.Fprintln(c.out, " 3. Show villains")
	fmt.Fprintln(c.out, " 4. Show arcs")
	fmt.Fprintln(c.out, " 5. Show powers")
	fmt.Fprintln(c.out, " 6. Show two tables together")
	fmt.Fprintln(c.out, " 7. Insert a row")
	fmt.Fprintln(c.out, " 8. Update a row")
	fmt.Fprintln(c.out, " 9. Delete a row")
	fmt.Fprintln(c.out, " d. Describe a table")
	fmt.Fprintln(c.out, "10. Quit")
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// showTable renders SELECT * over the given table.
func (c *Console) showTable(ctx context.Context, t tableDef) error {
	cols, data, err := c.fetchAll(ctx, "SELECT * FROM "+t.name+" ORDER BY "+t.key)
	if err != nil {
		return err
	}
	renderTable(c.out, cols, data)
	return nil
}

// fetchAll runs a query and stringifies every cell for display.
func (c *Console) fetchAll(ctx context.Context, query string, args ...any) ([]string, [][]string, error) {
	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	var data [][]string
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}
		rendered := make([]string, len(cols))
		for i, v := range cells {
			rendered[i] = formatValue(v)
		}
		data = append(data, rendered)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return cols, data, nil
}

// showJoined renders the combined rows of two of the fixed tables as a
// comma join.
func (c *Console) showJoined(ctx context.Context) error {
	first, ok := c.chooseTable()
	if !ok {
		return nil
	}
	second, ok := c.chooseTable()
	if !ok {
		return nil
	}

	cols, data, err := c.fetchAll(ctx, "SELECT * FROM "+first.name+", "+second.name)
	if err != nil {
		return err
	}
	renderTable(c.out, cols, data)
	return nil
}

// describeTable prints the column structure of any table visible to the
// session, resolved through the metadata pipeline.
func (c *Console) describeTable(ctx context.Context) error {
	name, ok := c.prompt("Table name: ")
	if !ok || name == "" {
		return nil
	}

	columns, err := c.meta.Columns(ctx, nil, nil, &name, nil)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		fmt.Fprintf(c.out, "No such table: %s\n", name)
		return nil
	}

	header := []string{"COLUMN", "TYPE", "SIZE", "NULLABLE", "DEFAULT"}
	data := make([][]string, 0, len(columns))
	for _, col := range columns {
		size := ""
		if col.ColumnSize != nil {
			size = strconv.FormatInt(*col.ColumnSize, 10)
		}
		def := "NULL"
		if col.ColumnDef != nil {
			def = *col.ColumnDef
		}
		data = append(data, []string{col.ColumnName, col.TypeName, size, col.IsNullable, def})
	}
	renderTable(c.out, header, data)
	return nil
}

func (c *Console) chooseTable() (*tableDef, bool) {
	name, ok := c.prompt("Table (hero/ally/villain/arc/power): ")
	if !ok {
		return nil, false
	}
	for i := range tables {
		if tables[i].name == strings.ToLower(name) {
			return &tables[i], true
		}
	}
	fmt.Fprintln(c.out, "Unknown table.")
	return nil, false
}

func (c *Console) insertRow(ctx context.Context) error {
	t, ok := c.chooseTable()
	if !ok {
		return nil
	}

	names := make([]string, 0, len(t.columns))
	marks := make([]string, 0, len(t.columns))
	args := make([]any, 0, len(t.columns))
	for _, col := range t.columns {
		raw, ok := c.prompt(col.name + ": ")
		if !ok {
			return nil
		}
		v, err := convertValue(col, raw)
		if err != nil {
			return err
		}
		names = append(names, col.name)
		marks = append(marks, "?")
		args = append(args, v)
	}

	query := "INSERT INTO " + t.name + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	n, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Inserted %d row(s).\n", n)
	return nil
}

func (c *Console) updateRow(ctx context.Context) error {
	t, ok := c.chooseTable()
	if !ok {
		return nil
	}

	colName, ok := c.prompt("Column to update: ")
	if !ok {
		return nil
	}
	col, found := t.column(colName)
	if !found {
		fmt.Fprintln(c.out, "Unknown column.")
		return nil
	}

	raw, ok := c.prompt("New value: ")
	if !ok {
		return nil
	}
	newValue, err := convertValue(col, raw)
	if err != nil {
		return err
	}

	keyCol, _ := t.column(t.key)
	keyRaw, ok := c.prompt(t.key + " of the row to update: ")
	if !ok {
		return nil
	}
	keyValue, err := convertValue(keyCol, keyRaw)
	if err != nil {
		return err
	}

	query := "UPDATE " + t.name + " SET " + col.name + " = ? WHERE " + t.key + " = ?"
	n, err := c.db.Exec(ctx, query, newValue, keyValue)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated %d row(s).\n", n)
	return nil
}

func (c *Console) deleteRow(ctx context.Context) error {
	password, ok := c.prompt("Password: ")
	if !ok {
		return nil
	}
	if password != c.deletePassword {
		fmt.Fprintln(c.out, "Wrong password.")
		return nil
	}

	t, ok := c.chooseTable()
	if !ok {
		return nil
	}
	keyCol, _ := t.column(t.key)
	keyRaw, ok := c.prompt(t.key + " of the row to delete: ")
	if !ok {
		return nil
	}
	keyValue, err := convertValue(keyCol, keyRaw)
	if err != nil {
		return err
	}

	n, err := c.db.Exec(ctx, "DELETE FROM "+t.name+" WHERE "+t.key+" = ?", keyValue)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted %d row(s).\n", n)
	return nil
}

func (t *tableDef) column(name string) (columnDef, bool) {
	for _, col := range t.columns {
		if strings.EqualFold(col.name, name) {
			return col, true
		}
	}
	return columnDef{}, false
}

func convertValue(col columnDef, raw string) (any, error) {
	if col.kind == kindInt {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errs.New(errs.ErrKindInvalidInput, col.name+" must be a number")
		}
		return n, nil
	}
	return raw, nil
}
