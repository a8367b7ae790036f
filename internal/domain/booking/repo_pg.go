package booking

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

const appointmentCols = `ap.id, ap.patient_id, ap.provider_id, pa.name, pa.phone, da.name, p.specialization,
	ap.appointment_date, ap.start_time, ap.end_time, ap.status, ap.payment_status, ap.fee,
	ap.symptoms, ap.diagnosis, ap.prescription, ap.notes, ap.created_at, ap.updated_at`

const appointmentJoins = `FROM appointment ap
	JOIN account pa ON pa.id = ap.patient_id
	JOIN provider p ON p.id = ap.provider_id
	JOIN account da ON da.id = p.account_id`

// Create inserts the appointment. A partial unique index on
// (provider_id, appointment_date, start_time) over non-cancelled rows makes
// the insert itself the conflict check, closing the double-booking race.
func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (
			id, patient_id, provider_id, appointment_date, start_time, end_time,
			status, payment_status, fee, symptoms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.PatientID, a.ProviderID, a.AppointmentDate, a.StartTime, a.EndTime,
		a.Status, a.PaymentStatus, a.Fee, a.Symptoms,
	)
	if isUniqueViolation(err) {
		return httperr.Conflictf("slot already booked")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` `+appointmentJoins+` WHERE ap.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			status = $2, diagnosis = $3, prescription = $4, notes = $5, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.Diagnosis, a.Prescription, a.Notes,
	)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx,
		`WHERE ap.patient_id = $1`,
		`ORDER BY ap.appointment_date DESC, ap.start_time DESC`,
		patientID, limit, offset)
}

// ListByProvider sorts chronologically so doctors see the near future first.
func (r *repoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx,
		`WHERE ap.provider_id = $1`,
		`ORDER BY ap.appointment_date ASC, ap.start_time ASC`,
		providerID, limit, offset)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+` `+appointmentJoins+`
		ORDER BY ap.appointment_date DESC, ap.start_time DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return collect(rows, total)
}

func (r *repoPG) list(ctx context.Context, where, order string, key uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment ap `+where, key).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+appointmentCols+` `+appointmentJoins+` `+where+` `+order+` LIMIT $2 OFFSET $3`,
		key, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return collect(rows, total)
}

func (r *repoPG) DeleteByProvider(ctx context.Context, providerID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointment WHERE provider_id = $1`, providerID)
	return int(tag.RowsAffected()), err
}

func (r *repoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointment WHERE patient_id = $1`, patientID)
	return int(tag.RowsAffected()), err
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total)
	return total, err
}

func (r *repoPG) CountByStatus(ctx context.Context, status string) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE status = $1`, status).Scan(&total)
	return total, err
}

func collect(rows pgx.Rows, total int) ([]*Appointment, int, error) {
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		a, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, a)
	}
	return appointments, total, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := scanInto(row, &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.NotFoundf("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAppointmentRow(rows pgx.Rows) (*Appointment, error) {
	var a Appointment
	if err := scanInto(rows, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanInto(row pgx.Row, a *Appointment) error {
	return row.Scan(
		&a.ID, &a.PatientID, &a.ProviderID, &a.PatientName, &a.PatientPhone, &a.ProviderName, &a.Specialization,
		&a.AppointmentDate, &a.StartTime, &a.EndTime, &a.Status, &a.PaymentStatus, &a.Fee,
		&a.Symptoms, &a.Diagnosis, &a.Prescription, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
