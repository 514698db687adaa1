// Package memstore is an in-memory stand-in for the Postgres repositories.
// Transactions are serialized and roll back by restoring a snapshot, and
// unique or foreign key violations surface as *pgconn.PgError so callers see
// the same errors the database would raise.
package memstore

import (
	"context"
	"sync"
	"time"

	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type tables struct {
	patients     map[uuid.UUID]entity.Patient
	doctors      map[uuid.UUID]entity.Doctor
	schedules    map[int]entity.DoctorSchedule
	tests        map[int]entity.MedicalTest
	appointments map[uuid.UUID]entity.Appointment
	bills        map[uuid.UUID]entity.Bill
	items        map[uuid.UUID]entity.BillItem
	payments     map[uuid.UUID]entity.Payment
	settings     map[string]entity.SystemSetting
	auditLogs    []entity.AuditLog
	order        map[uuid.UUID]int64
	seq          int64
	nextAuditID  int64
	nextSettID   int
}

func newTables() tables {
	return tables{
		patients:     map[uuid.UUID]entity.Patient{},
		doctors:      map[uuid.UUID]entity.Doctor{},
		schedules:    map[int]entity.DoctorSchedule{},
		tests:        map[int]entity.MedicalTest{},
		appointments: map[uuid.UUID]entity.Appointment{},
		bills:        map[uuid.UUID]entity.Bill{},
		items:        map[uuid.UUID]entity.BillItem{},
		payments:     map[uuid.UUID]entity.Payment{},
		settings:     map[string]entity.SystemSetting{},
		order:        map[uuid.UUID]int64{},
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.patients {
		c.patients[k] = v
	}
	for k, v := range t.doctors {
		c.doctors[k] = v
	}
	for k, v := range t.schedules {
		c.schedules[k] = v
	}
	for k, v := range t.tests {
		c.tests[k] = v
	}
	for k, v := range t.appointments {
		c.appointments[k] = v
	}
	for k, v := range t.bills {
		c.bills[k] = v
	}
	for k, v := range t.items {
		c.items[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.settings {
		c.settings[k] = v
	}
	for k, v := range t.order {
		c.order[k] = v
	}
	c.auditLogs = append([]entity.AuditLog(nil), t.auditLogs...)
	c.seq = t.seq
	c.nextAuditID = t.nextAuditID
	c.nextSettID = t.nextSettID
	return c
}

// Store holds every table. The zero value is not usable; call New.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data tables

	failMu   sync.Mutex
	failures map[string]error
}

func New() *Store {
	return &Store{
		data:     newTables(),
		failures: map[string]error{},
	}
}

// FailOn makes the named operation (for example "payments.Create") return err
// until cleared with a nil error.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) injected(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

func (s *Store) nextSeq(id uuid.UUID) {
	s.data.seq++
	s.data.order[id] = s.data.seq
}

// DB returns nil; the repositories ignore the handle.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return nil
}

// WithinTransaction runs fn with every other transaction excluded and
// restores the pre-transaction state when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.Transactor = (*Store)(nil)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint \"" + constraint + "\""}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "insert or update violates foreign key constraint \"" + constraint + "\""}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Seeding

func (s *Store) AddPatient(p entity.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.patients[p.ID] = p
}

func (s *Store) AddDoctor(d entity.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Schedules = nil
	s.data.doctors[d.ID] = d
}

func (s *Store) AddSchedule(sc entity.DoctorSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.Doctor = entity.Doctor{}
	s.data.schedules[sc.ID] = sc
}

func (s *Store) AddMedicalTest(t entity.MedicalTest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tests[t.ID] = t
}

// AddAppointment inserts a row directly, bypassing every rule.
func (s *Store) AddAppointment(a entity.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Patient = entity.Patient{}
	a.Schedule = entity.DoctorSchedule{}
	a.AppointmentDate = entity.NormalizeDate(a.AppointmentDate)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.data.appointments[a.ID] = a
	s.nextSeq(a.ID)
}

// Inspection

func (s *Store) Appointment(id uuid.UUID) (entity.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.appointments[id]
	return a, ok
}

func (s *Store) AllAppointments() []entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Appointment, 0, len(s.data.appointments))
	for _, a := range s.data.appointments {
		out = append(out, a)
	}
	return out
}

func (s *Store) Bill(id uuid.UUID) (entity.Bill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.bills[id]
	if !ok {
		return entity.Bill{}, false
	}
	return s.withItems(b), true
}

func (s *Store) AllBills() []entity.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Bill, 0, len(s.data.bills))
	for _, b := range s.data.bills {
		out = append(out, s.withItems(b))
	}
	return out
}

func (s *Store) BillItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.items)
}

func (s *Store) AllPayments() []entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Payment, 0, len(s.data.payments))
	for _, p := range s.data.payments {
		out = append(out, p)
	}
	return out
}

func (s *Store) AuditLogs() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditLog(nil), s.data.auditLogs...)
}
