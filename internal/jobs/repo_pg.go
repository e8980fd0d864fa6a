package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectJob = `
SELECT id, owner_id, title, description, required_skills, minimum_experience, preferred_qualifications,
       experience_weight, skills_weight, education_weight, certifications_weight, status, created_at, updated_at
FROM job_descriptions`

// Create inserts a job description.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO job_descriptions (
    id,
    owner_id,
    title,
    description,
    required_skills,
    minimum_experience,
    preferred_qualifications,
    experience_weight,
    skills_weight,
    education_weight,
    certifications_weight,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		job.OwnerID,
		job.Title,
		job.Description,
		job.RequiredSkills,
		job.MinimumExperience,
		job.PreferredQualifications,
		job.Weights.Experience,
		job.Weights.Skills,
		job.Weights.Education,
		job.Weights.Certifications,
		string(job.Status),
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// Update replaces the editable fields of a job description.
func (r *PGRepo) Update(ctx context.Context, job Job) error {
	const query = `
UPDATE job_descriptions
SET title = $3,
    description = $4,
    required_skills = $5,
    minimum_experience = $6,
    preferred_qualifications = $7,
    experience_weight = $8,
    skills_weight = $9,
    education_weight = $10,
    certifications_weight = $11,
    status = $12,
    updated_at = $13
WHERE owner_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(
		ctx,
		query,
		job.OwnerID,
		job.ID,
		job.Title,
		job.Description,
		job.RequiredSkills,
		job.MinimumExperience,
		job.PreferredQualifications,
		job.Weights.Experience,
		job.Weights.Skills,
		job.Weights.Education,
		job.Weights.Certifications,
		string(job.Status),
		job.UpdatedAt,
	)
	return affected(res, err)
}

// Get fetches one job description.
func (r *PGRepo) Get(ctx context.Context, ownerID, id string) (Job, error) {
	row := r.DB.QueryRowContext(ctx, selectJob+`
WHERE owner_id = $1 AND id = $2`, ownerID, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return Job{}, ErrNotFound
	}
	return job, err
}

// List returns jobs newest first, optionally filtered by status.
func (r *PGRepo) List(ctx context.Context, ownerID string, status Status) ([]Job, error) {
	const query = selectJob + `
WHERE owner_id = $1 AND ($2 = '' OR status = $2)
ORDER BY updated_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// SetStatus flips a job between active and inactive.
func (r *PGRepo) SetStatus(ctx context.Context, ownerID, id string, status Status) error {
	const query = `
UPDATE job_descriptions
SET status = $3, updated_at = $4
WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, id, string(status), time.Now().UTC())
	return affected(res, err)
}

// Delete removes a job description.
func (r *PGRepo) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM job_descriptions WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, id)
	return affected(res, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (Job, error) {
	var job Job
	var status string
	err := s.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Title,
		&job.Description,
		&job.RequiredSkills,
		&job.MinimumExperience,
		&job.PreferredQualifications,
		&job.Weights.Experience,
		&job.Weights.Skills,
		&job.Weights.Education,
		&job.Weights.Certifications,
		&status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	job.Status = Status(status)
	return job, err
}

func affected(res sql.Result, err error) error {
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

// isInvalidID reports Postgres rejecting a malformed uuid.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

var _ Repo = (*PGRepo)(nil)
