package postgres

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gigboard/backend/internal/domain/model"
)

// table binds a record type to its table. Columns are read from the record's
// db tags, so SELECT/RETURNING lists and row scanning share one definition.
type table[T any] struct {
	name    string
	columns []string
}

var (
	usersTable        = newTable[model.User]("users")
	servicesTable     = newTable[model.Service]("services")
	jobsTable         = newTable[model.Job]("jobs")
	hireRequestsTable = newTable[model.HireRequest]("hire_requests")
	adminActionsTable = newTable[model.AdminAction]("admin_actions")
)

func newTable[T any](name string) table[T] {
	return table[T]{name: name, columns: columnsOf[T]()}
}

func (t table[T]) selectList() string {
	return strings.Join(t.columns, ", ")
}

func (t table[T]) selectFrom() string {
	return "SELECT " + t.selectList() + " FROM " + t.name
}

func (t table[T]) returning() string {
	return "RETURNING " + t.selectList()
}

func (t table[T]) collect(rows pgx.Rows, err error) ([]T, error) {
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan %s rows: %w", t.name, err)
	}
	return items, nil
}

func (t table[T]) collectOne(rows pgx.Rows, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, fmt.Errorf("query %s: %w", t.name, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("scan %s row: %w", t.name, err)
	}
	return item, nil
}

func columnsOf[T any]() []string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	columns := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
	}
	return columns
}
