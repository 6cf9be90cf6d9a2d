package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/nurpe/maintenance-tracker/internal/remote"
)

// Schema lists the writable columns of every table the store may touch.
type Schema map[string][]string

var DefaultSchema = Schema{
	"companies":        {"area", "periodicity", "company", "observation", "last_maintenance", "next_maintenance", "technical_responsible"},
	"service_calls":    {"opening_date", "protocol", "area", "problem", "status"},
	"visits":           {"date", "time", "company", "description", "responsible"},
	"avcb_services":    {"service", "periodicity", "last_maintenance", "next_maintenance", "days_to_expire"},
	"budgets":          {"description", "user_id"},
	"budget_documents": {"budget_id", "file_name", "file_path", "file_type", "file_size", "user_id"},
}

// TableStore implements remote.Store over Postgres tables.
type TableStore struct {
	db     *gorm.DB
	schema Schema
}

func NewTableStore(db *gorm.DB, schema Schema) *TableStore {
	if schema == nil {
		schema = DefaultSchema
	}
	return &TableStore{db: db, schema: schema}
}

func (s *TableStore) Select(ctx context.Context, collection string) ([]remote.Row, error) {
	query, err := s.buildSelect(collection)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return normalizeRows(rows), nil
}

func (s *TableStore) Insert(ctx context.Context, collection string, row remote.Row) (remote.Row, error) {
	query, args, err := s.buildInsert(collection, row)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	if len(rows) == 0 {
		return nil, &remote.Error{Code: remote.CodeInternal, Message: fmt.Sprintf("insert into %s returned no row", collection)}
	}
	return normalizeRow(rows[0]), nil
}

func (s *TableStore) Update(ctx context.Context, collection, id string, row remote.Row) (remote.Row, error) {
	query, args, err := s.buildUpdate(collection, id, row)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, remote.NotFound(collection, id)
	}
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	if len(rows) == 0 {
		return nil, remote.NotFound(collection, id)
	}
	return normalizeRow(rows[0]), nil
}

func (s *TableStore) Delete(ctx context.Context, collection, id string) error {
	if _, ok := s.schema[collection]; !ok {
		return unknownTable(collection)
	}
	if _, err := uuid.Parse(id); err != nil {
		return remote.NotFound(collection, id)
	}
	result := s.db.WithContext(ctx).Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quoteIdent(collection)), id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return remote.NotFound(collection, id)
	}
	return nil
}

func (s *TableStore) buildSelect(collection string) (string, error) {
	if _, ok := s.schema[collection]; !ok {
		return "", unknownTable(collection)
	}
	return fmt.Sprintf(`SELECT * FROM %s ORDER BY created_at, id`, quoteIdent(collection)), nil
}

func (s *TableStore) buildInsert(collection string, row remote.Row) (string, []any, error) {
	columns, args, err := s.assignments(collection, row)
	if err != nil {
		return "", nil, err
	}
	if len(columns) == 0 {
		return fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES RETURNING *`, quoteIdent(collection)), nil, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quoteIdent(column)
		placeholders[i] = "?"
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING *`,
		quoteIdent(collection), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

func (s *TableStore) buildUpdate(collection, id string, row remote.Row) (string, []any, error) {
	columns, args, err := s.assignments(collection, row)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, len(columns))
	for i, column := range columns {
		sets[i] = quoteIdent(column) + " = ?"
	}
	if len(sets) == 0 {
		sets = append(sets, "id = id")
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? RETURNING *`, quoteIdent(collection), strings.Join(sets, ", "))
	return query, append(args, id), nil
}

// assignments returns the row's columns in a stable order with their values.
// The id and created_at columns are owned by the database and are dropped.
func (s *TableStore) assignments(collection string, row remote.Row) ([]string, []any, error) {
	allowed, ok := s.schema[collection]
	if !ok {
		return nil, nil, unknownTable(collection)
	}

	columns := make([]string, 0, len(row))
	for column := range row {
		if column == "id" || column == "created_at" {
			continue
		}
		if !slices.Contains(allowed, column) {
			return nil, nil, &remote.Error{
				Code:    remote.CodeUnknownColumn,
				Message: fmt.Sprintf("column %q does not exist on %s", column, collection),
			}
		}
		columns = append(columns, column)
	}
	slices.Sort(columns)

	args := make([]any, len(columns))
	for i, column := range columns {
		args[i] = row[column]
	}
	return columns, args, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func unknownTable(collection string) *remote.Error {
	return &remote.Error{
		Code:    remote.CodeUnknownTable,
		Message: fmt.Sprintf("relation %q does not exist", collection),
	}
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &remote.Error{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
		}
	}
	return &remote.Error{Code: remote.CodeInternal, Message: err.Error()}
}

func normalizeRows(rows []map[string]any) []remote.Row {
	out := make([]remote.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(row))
	}
	return out
}

func normalizeRow(row map[string]any) remote.Row {
	out := make(remote.Row, len(row))
	for column, value := range row {
		switch v := value.(type) {
		case [16]byte:
			out[column] = uuid.UUID(v).String()
		case []byte:
			out[column] = string(v)
		default:
			out[column] = v
		}
	}
	return out
}
