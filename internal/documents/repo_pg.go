package documents

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectRecord = `
SELECT id, owner_id, file_name, file_path, content_type, file_size, upload_date
FROM upload_records`

// Create inserts a new upload record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO upload_records (
    id,
    owner_id,
    file_name,
    file_path,
    content_type,
    file_size,
    upload_date
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.OwnerID,
		rec.FileName,
		rec.FilePath,
		rec.ContentType,
		rec.FileSize,
		rec.UploadDate,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicatePath
	}
	return err
}

// GetByID fetches a record by id.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	return r.getOne(ctx, selectRecord+`
WHERE owner_id = $1 AND id = $2
LIMIT 1`, ownerID, id)
}

// GetByPath fetches a record by its storage key.
func (r *PGRepo) GetByPath(ctx context.Context, ownerID, filePath string) (Record, error) {
	return r.getOne(ctx, selectRecord+`
WHERE owner_id = $1 AND file_path = $2
LIMIT 1`, ownerID, filePath)
}

// GetByName fetches the newest record whose file name equals name, ignoring case.
func (r *PGRepo) GetByName(ctx context.Context, ownerID, name string) (Record, error) {
	return r.getOne(ctx, selectRecord+`
WHERE owner_id = $1 AND lower(file_name) = lower($2)
ORDER BY upload_date DESC
LIMIT 1`, ownerID, name)
}

// SearchByName returns records whose file name contains name, ignoring case.
func (r *PGRepo) SearchByName(ctx context.Context, ownerID, name string, limit int) ([]Record, error) {
	const query = selectRecord + `
WHERE owner_id = $1 AND file_name ILIKE $2 ESCAPE '\'
ORDER BY upload_date DESC
LIMIT $3`
	return r.getMany(ctx, query, ownerID, "%"+escapeLike(name)+"%", clampLimit(limit))
}

// List returns records newest first.
func (r *PGRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	if offset < 0 {
		offset = 0
	}
	const query = selectRecord + `
WHERE owner_id = $1
ORDER BY upload_date DESC
LIMIT $2 OFFSET $3`
	return r.getMany(ctx, query, ownerID, clampLimit(limit), offset)
}

// Delete removes a record.
func (r *PGRepo) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM upload_records WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, id)
	if isInvalidID(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) getOne(ctx context.Context, query string, args ...any) (Record, error) {
	var rec Record
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.FileName,
		&rec.FilePath,
		&rec.ContentType,
		&rec.FileSize,
		&rec.UploadDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) getMany(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.FileName,
			&rec.FilePath,
			&rec.ContentType,
			&rec.FileSize,
			&rec.UploadDate,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// isInvalidID reports a malformed uuid parameter, which can never match a row.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ Repo = (*PGRepo)(nil)
