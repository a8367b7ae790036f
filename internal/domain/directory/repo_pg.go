package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibook/medibook/internal/platform/db"
	"github.com/medibook/medibook/internal/platform/httperr"
)

type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const providerCols = `p.id, p.account_id, a.name, a.email, a.phone, p.specialization, p.experience_years,
	p.qualifications, p.consultation_fee, p.bio, p.image_filename, p.approved,
	p.rating_sum, p.rating_count, p.created_at, p.updated_at`

func (r *repoPG) Create(ctx context.Context, p *Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider (
			id, account_id, specialization, experience_years, qualifications,
			consultation_fee, bio, image_filename, approved, rating_sum, rating_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.AccountID, p.Specialization, p.ExperienceYears, p.Qualifications,
		p.ConsultationFee, p.Bio, p.ImageFilename, p.Approved, p.RatingSum, p.RatingCount,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := r.scanProvider(r.conn(ctx).QueryRow(ctx, `
		SELECT `+providerCols+` FROM provider p
		JOIN account a ON a.id = p.account_id
		WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return r.loadAvailability(ctx, p)
}

func (r *repoPG) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Provider, error) {
	p, err := r.scanProvider(r.conn(ctx).QueryRow(ctx, `
		SELECT `+providerCols+` FROM provider p
		JOIN account a ON a.id = p.account_id
		WHERE p.account_id = $1`, accountID))
	if err != nil {
		return nil, err
	}
	return r.loadAvailability(ctx, p)
}

func (r *repoPG) Update(ctx context.Context, p *Provider) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE provider SET
			specialization = $2, experience_years = $3, qualifications = $4,
			consultation_fee = $5, bio = $6, image_filename = $7, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Specialization, p.ExperienceYears, p.Qualifications,
		p.ConsultationFee, p.Bio, p.ImageFilename,
	)
	return err
}

func (r *repoPG) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE provider SET approved = $2, updated_at = NOW() WHERE id = $1`,
		id, approved,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httperr.NotFoundf("provider not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM provider_availability WHERE provider_id = $1`, id); err != nil {
		return err
	}
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM provider WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Provider, int, error) {
	where := `WHERE ($1 = '' OR p.specialization = $1) AND (NOT $2 OR p.approved)`

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM provider p `+where,
		f.Specialization, f.ApprovedOnly).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+providerCols+` FROM provider p
		JOIN account a ON a.id = p.account_id
		`+where+`
		ORDER BY a.name LIMIT $3 OFFSET $4`,
		f.Specialization, f.ApprovedOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var providers []*Provider
	for rows.Next() {
		p, err := r.scanProviderRow(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, p := range providers {
		if _, err := r.loadAvailability(ctx, p); err != nil {
			return nil, 0, err
		}
	}
	return providers, total, nil
}

// ReplaceAvailability swaps the full weekly slot list. Callers run it inside
// a transaction so the delete and inserts commit together.
func (r *repoPG) ReplaceAvailability(ctx context.Context, providerID uuid.UUID, slots []AvailabilitySlot) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx,
		`DELETE FROM provider_availability WHERE provider_id = $1`, providerID); err != nil {
		return err
	}
	for i, slot := range slots {
		_, err := c.Exec(ctx, `
			INSERT INTO provider_availability (provider_id, position, day_of_week, start_time, end_time, enabled)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			providerID, i, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.Enabled,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM provider`).Scan(&total)
	return total, err
}

func (r *repoPG) loadAvailability(ctx context.Context, p *Provider) (*Provider, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT day_of_week, start_time, end_time, enabled
		FROM provider_availability WHERE provider_id = $1 ORDER BY position`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var slot AvailabilitySlot
		if err := rows.Scan(&slot.DayOfWeek, &slot.StartTime, &slot.EndTime, &slot.Enabled); err != nil {
			return nil, err
		}
		p.Availability = append(p.Availability, slot)
	}
	return p, rows.Err()
}

func (r *repoPG) scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Email, &p.Phone, &p.Specialization, &p.ExperienceYears,
		&p.Qualifications, &p.ConsultationFee, &p.Bio, &p.ImageFilename, &p.Approved,
		&p.RatingSum, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.NotFoundf("provider not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) scanProviderRow(rows pgx.Rows) (*Provider, error) {
	var p Provider
	err := rows.Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Email, &p.Phone, &p.Specialization, &p.ExperienceYears,
		&p.Qualifications, &p.ConsultationFee, &p.Bio, &p.ImageFilename, &p.Approved,
		&p.RatingSum, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
