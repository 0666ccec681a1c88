package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmd/pharmd/internal/platform/db"
)

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFor(ctx, r.pool)
}

const slotCols = `id, date::text, start_time::text, end_time::text, service_type, status, created_at, updated_at`

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime, &s.ServiceType, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *slotRepoPG) Create(ctx context.Context, s *Slot) error {
	s.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment_slots (id, date, start_time, end_time, service_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		s.ID, s.Date, s.StartTime, s.EndTime, s.ServiceType, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *slotRepoPG) getByID(ctx context.Context, id uuid.UUID, suffix string) (*Slot, error) {
	s, err := scanSlot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+slotCols+` FROM appointment_slots WHERE id = $1`+suffix, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return r.getByID(ctx, id, ``)
}

func (r *slotRepoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return r.getByID(ctx, id, ` FOR UPDATE`)
}

func (r *slotRepoPG) Update(ctx context.Context, s *Slot) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment_slots SET date = $2, start_time = $3, end_time = $4, service_type = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID, s.Date, s.StartTime, s.EndTime, s.ServiceType, s.Status).Scan(&s.UpdatedAt)
}

func (r *slotRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment_slots SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *slotRepoPG) List(ctx context.Context, f SlotFilter, limit, offset int) ([]*Slot, int, error) {
	where := ` WHERE ($1 = '' OR date = $1::date) AND ($2 = '' OR service_type = $2) AND ($3 = '' OR status = $3)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment_slots`+where,
		f.Date, string(f.ServiceType), string(f.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+slotCols+` FROM appointment_slots`+where+` ORDER BY date ASC, start_time ASC LIMIT $4 OFFSET $5`,
		f.Date, string(f.ServiceType), string(f.Status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectSlots(rows)
	return items, total, err
}

func (r *slotRepoPG) ListAvailable(ctx context.Context, date string, serviceType ServiceType) ([]*Slot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotCols+` FROM appointment_slots
		WHERE status = 'available' AND ($1 = '' OR date = $1::date) AND ($2 = '' OR service_type = $2)
		ORDER BY date ASC, start_time ASC`,
		date, string(serviceType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

// HasOverlap mirrors the boundary-inclusive interval test: either endpoint
// of an existing slot falling inside the candidate range, or an existing
// slot containing it entirely.
func (r *slotRepoPG) HasOverlap(ctx context.Context, date, start, end string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment_slots
			WHERE date = $1::date
			  AND (start_time BETWEEN $2::time AND $3::time
			    OR end_time BETWEEN $2::time AND $3::time
			    OR (start_time <= $2::time AND end_time >= $3::time))
		)`, date, start, end).Scan(&exists)
	return exists, err
}

func collectSlots(rows pgx.Rows) ([]*Slot, error) {
	var items []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository { return &bookingRepoPG{pool: pool} }

func (r *bookingRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFor(ctx, r.pool)
}

const bookingCols = `id, patient_id, slot_id, notes, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PatientID, &b.SlotID, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bookingRepoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bookings (id, patient_id, slot_id, notes, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		b.ID, b.PatientID, b.SlotID, b.Notes, b.Status).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *bookingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := scanBooking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

const detailQuery = `
	SELECT b.id, b.patient_id, b.slot_id, b.notes, b.status, b.created_at, b.updated_at,
	       p.id, p.name, p.email, p.phone,
	       s.id, s.date::text, s.start_time::text, s.end_time::text, s.service_type
	FROM bookings b
	JOIN patients p ON p.id = b.patient_id
	JOIN appointment_slots s ON s.id = b.slot_id`

func scanDetail(row pgx.Row) (*BookingDetail, error) {
	var d BookingDetail
	var pat PatientInfo
	var slot SlotInfo
	err := row.Scan(&d.ID, &d.PatientID, &d.SlotID, &d.Notes, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&pat.ID, &pat.Name, &pat.Email, &pat.Phone,
		&slot.ID, &slot.Date, &slot.StartTime, &slot.EndTime, &slot.ServiceType)
	d.Patient = &pat
	d.Slot = &slot
	return &d, err
}

func (r *bookingRepoPG) GetDetail(ctx context.Context, id uuid.UUID) (*BookingDetail, error) {
	d, err := scanDetail(r.conn(ctx).QueryRow(ctx, detailQuery+` WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (r *bookingRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *bookingRepoPG) List(ctx context.Context, f BookingFilter, limit, offset int) ([]*BookingDetail, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR b.patient_id = $1) AND ($2 = '' OR b.status = $2) AND ($3 = '' OR s.date::text = $3)`
	var pid *uuid.UUID
	if f.PatientID != uuid.Nil {
		pid = &f.PatientID
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings b JOIN appointment_slots s ON s.id = b.slot_id`+where,
		pid, string(f.Status), f.Date).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		detailQuery+where+` ORDER BY b.created_at DESC LIMIT $4 OFFSET $5`,
		pid, string(f.Status), f.Date, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*BookingDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
