package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// Querier is the subset of *pgxpool.Pool used by the source
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Tables names the relations holding the assignment table and the address book
type Tables struct {
	Assignments string
	Addresses   string
}

func DefaultTables() Tables {
	return Tables{
		Assignments: "site_administrators",
		Addresses:   "administrator_addresses",
	}
}

// AssignmentSource reads site assignments and notification addresses from Postgres
type AssignmentSource struct {
	db      Querier
	tables  Tables
	builder sq.StatementBuilderType
}

func NewAssignmentSource(db Querier, tables Tables) *AssignmentSource {
	return &AssignmentSource{
		db:      db,
		tables:  tables,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Connect opens a pool and checks that the database answers
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

func (s *AssignmentSource) assignmentsQuery() sq.SelectBuilder {
	return s.builder.
		Select("site_id", "administrator").
		From(s.tables.Assignments).
		Where(sq.And{
			sq.NotEq{"site_id": nil},
			sq.NotEq{"administrator": nil},
		}).
		OrderBy("site_id")
}

func (s *AssignmentSource) addressesQuery() sq.SelectBuilder {
	return s.builder.
		Select("administrator", "address").
		From(s.tables.Addresses).
		Where(sq.And{
			sq.NotEq{"address": nil},
			sq.NotEq{"address": ""},
		}).
		OrderBy("administrator")
}

// FetchAssignments returns the site to administrator table. Names are returned as stored;
// the assignment repository normalizes them.
func (s *AssignmentSource) FetchAssignments(ctx context.Context) ([]entities.AdministratorAssignment, error) {
	query, args, err := s.assignmentsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build assignments query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []entities.AdministratorAssignment
	for rows.Next() {
		var site, administrator string
		if err := rows.Scan(&site, &administrator); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, entities.AdministratorAssignment{
			SiteID:        entities.SiteID(site),
			Administrator: entities.AdministratorName(administrator),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignments: %w", err)
	}
	return assignments, nil
}

// FetchAddresses returns the administrator address book
func (s *AssignmentSource) FetchAddresses(ctx context.Context) (entities.AddressBook, error) {
	query, args, err := s.addressesQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build addresses query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	book := make(entities.AddressBook)
	for rows.Next() {
		var administrator, address string
		if err := rows.Scan(&administrator, &address); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		book[entities.AdministratorName(administrator)] = address
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read addresses: %w", err)
	}
	return book, nil
}
