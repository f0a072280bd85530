package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

type fakeRows struct {
	values [][]string
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.values[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		*(d.(*string)) = row[i]
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.values[r.pos-1]
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	return values, nil
}

type fakeQuerier struct {
	rows  *fakeRows
	err   error
	query string
	args  []any
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.query = sql
	q.args = args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestAssignmentSource_Queries(t *testing.T) {
	source := NewAssignmentSource(nil, Tables{Assignments: "compras.adm_obras", Addresses: "compras.adm_emails"})

	query, args, err := source.assignmentsQuery().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT site_id, administrator FROM compras.adm_obras WHERE (site_id IS NOT NULL AND administrator IS NOT NULL) ORDER BY site_id", query)
	assert.Empty(t, args)

	query, args, err = source.addressesQuery().ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT administrator, address FROM compras.adm_emails WHERE (address IS NOT NULL AND address <> $1) ORDER BY administrator", query)
	assert.Equal(t, []any{""}, args)
}

func TestAssignmentSource_FetchAssignments(t *testing.T) {
	rows := &fakeRows{values: [][]string{{"S1", " Ána "}, {"S2", "Bruno"}}}
	db := &fakeQuerier{rows: rows}

	assignments, err := NewAssignmentSource(db, DefaultTables()).FetchAssignments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []entities.AdministratorAssignment{
		{SiteID: "S1", Administrator: " Ána "},
		{SiteID: "S2", Administrator: "Bruno"},
	}, assignments)
	assert.Contains(t, db.query, "FROM site_administrators")
	assert.True(t, rows.closed)
}

func TestAssignmentSource_FetchAddresses(t *testing.T) {
	db := &fakeQuerier{rows: &fakeRows{values: [][]string{{"ANA", "ana@example.com"}}}}

	book, err := NewAssignmentSource(db, DefaultTables()).FetchAddresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.AddressBook{"ANA": "ana@example.com"}, book)
	assert.Equal(t, []any{""}, db.args)
}

func TestAssignmentSource_Errors(t *testing.T) {
	source := NewAssignmentSource(&fakeQuerier{err: errors.New("connection refused")}, DefaultTables())
	_, err := source.FetchAssignments(context.Background())
	assert.ErrorContains(t, err, "connection refused")

	source = NewAssignmentSource(&fakeQuerier{rows: &fakeRows{err: errors.New("conn reset")}}, DefaultTables())
	_, err = source.FetchAddresses(context.Background())
	assert.ErrorContains(t, err, "conn reset")
}
