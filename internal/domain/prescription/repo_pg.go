package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmd/pharmd/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFor(ctx, r.pool)
}

const cols = `id, patient_id, medication_name, dosage, quantity, instructions, prescribed_by, total_amount, status, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.MedicationName, &p.Dosage, &p.Quantity,
		&p.Instructions, &p.PrescribedBy, &p.TotalAmount, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (id, patient_id, medication_name, dosage, quantity, instructions, prescribed_by, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.MedicationName, p.Dosage, p.Quantity,
		p.Instructions, p.PrescribedBy, p.TotalAmount, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) getByID(ctx context.Context, id uuid.UUID, suffix string) (*Prescription, error) {
	p, err := scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM prescriptions WHERE id = $1`+suffix, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.getByID(ctx, id, ``)
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.getByID(ctx, id, ` FOR UPDATE`)
}

func scanWithPatient(row pgx.Row) (*WithPatient, error) {
	var wp WithPatient
	var pat PatientInfo
	err := row.Scan(&wp.ID, &wp.PatientID, &wp.MedicationName, &wp.Dosage, &wp.Quantity,
		&wp.Instructions, &wp.PrescribedBy, &wp.TotalAmount, &wp.Status, &wp.CreatedAt, &wp.UpdatedAt,
		&pat.ID, &pat.Name, &pat.Email, &pat.Phone)
	wp.Patient = &pat
	return &wp, err
}

const withPatientQuery = `
	SELECT r.id, r.patient_id, r.medication_name, r.dosage, r.quantity, r.instructions,
	       r.prescribed_by, r.total_amount, r.status, r.created_at, r.updated_at,
	       p.id, p.name, p.email, p.phone
	FROM prescriptions r
	JOIN patients p ON p.id = r.patient_id`

func (r *repoPG) GetWithPatient(ctx context.Context, id uuid.UUID) (*WithPatient, error) {
	wp, err := scanWithPatient(r.conn(ctx).QueryRow(ctx, withPatientQuery+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return wp, err
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE prescriptions SET status = $2, total_amount = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Status, p.TotalAmount).Scan(&p.UpdatedAt)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*WithPatient, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR r.patient_id = $1) AND ($2 = '' OR r.status = $2)`
	var pid *uuid.UUID
	if f.PatientID != uuid.Nil {
		pid = &f.PatientID
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescriptions r`+where, pid, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		withPatientQuery+where+` ORDER BY r.created_at DESC LIMIT $3 OFFSET $4`,
		pid, string(f.Status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*WithPatient
	for rows.Next() {
		wp, err := scanWithPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, wp)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status Status, limit, offset int) ([]*Prescription, int, error) {
	where := ` WHERE patient_id = $1 AND ($2 = '' OR status = $2)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescriptions`+where, patientID, string(status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM prescriptions`+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		patientID, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
