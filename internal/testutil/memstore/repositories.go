package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// withItems attaches a copy of the bill's items in insertion order.
// Callers hold s.mu.
func (s *Store) withItems(b entity.Bill) entity.Bill {
	items := make([]entity.BillItem, 0)
	for _, item := range s.data.items {
		if item.BillID == b.ID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return s.data.order[items[i].ID] < s.data.order[items[j].ID]
	})
	b.Items = items
	b.AppointmentID = cloneUUID(b.AppointmentID)
	b.PaidAt = cloneTime(b.PaidAt)
	return b
}

// loadAppointment copies a stored row and fills its relations. Callers hold s.mu.
func (s *Store) loadAppointment(a entity.Appointment) entity.Appointment {
	a.RescheduledFromID = cloneUUID(a.RescheduledFromID)
	a.CancelledAt = cloneTime(a.CancelledAt)
	a.PaidAt = cloneTime(a.PaidAt)
	a.RefundedAt = cloneTime(a.RefundedAt)
	a.Patient = s.data.patients[a.PatientID]
	schedule := s.data.schedules[a.ScheduleID]
	schedule.Doctor = s.data.doctors[schedule.DoctorID]
	a.Schedule = schedule
	return a
}

// Patients

type patientRepository struct{ s *Store }

func (s *Store) Patients() repository.PatientRepository { return &patientRepository{s} }

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	if err := r.s.injected("patients.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.patients[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Schedules

type scheduleRepository struct{ s *Store }

func (s *Store) Schedules() repository.DoctorScheduleRepository { return &scheduleRepository{s} }

func (r *scheduleRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.DoctorSchedule, error) {
	if err := r.s.injected("schedules.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.data.schedules[id]
	if !ok {
		return nil, nil
	}
	sc.Doctor = r.s.data.doctors[sc.DoctorID]
	return &sc, nil
}

// Medical tests

type medicalTestRepository struct{ s *Store }

func (s *Store) MedicalTests() repository.MedicalTestRepository { return &medicalTestRepository{s} }

func (r *medicalTestRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.MedicalTest, error) {
	if err := r.s.injected("medicalTests.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tests[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Appointments

type appointmentRepository struct{ s *Store }

func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepository{s} }

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	if err := r.s.injected("appointments.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.patients[appointment.PatientID]; !ok {
		return foreignKeyViolation("appointments_patient_id_fkey")
	}
	if _, ok := r.s.data.appointments[appointment.ID]; ok {
		return uniqueViolation("appointments_pkey")
	}
	if appointment.RescheduledFromID != nil {
		for _, existing := range r.s.data.appointments {
			if existing.RescheduledFromID != nil && *existing.RescheduledFromID == *appointment.RescheduledFromID {
				return uniqueViolation("idx_appointments_rescheduled_from_id")
			}
		}
	}

	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	row := *appointment
	row.Patient = entity.Patient{}
	row.Schedule = entity.DoctorSchedule{}
	row.AppointmentDate = entity.NormalizeDate(row.AppointmentDate)
	row.RescheduledFromID = cloneUUID(row.RescheduledFromID)
	r.s.data.appointments[row.ID] = row
	r.s.nextSeq(row.ID)
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	if err := r.s.injected("appointments.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, nil
	}
	loaded := r.s.loadAppointment(a)
	return &loaded, nil
}

func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	if err := r.s.injected("appointments.FindByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, db, id)
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	if err := r.s.injected("appointments.FindAll"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Appointment, 0)
	for _, a := range r.s.data.appointments {
		loaded := r.s.loadAppointment(a)
		if filter != nil {
			if filter.Status != "" && loaded.Status != filter.Status {
				continue
			}
			if filter.PatientID != nil && loaded.PatientID != *filter.PatientID {
				continue
			}
			if filter.Date != nil && !loaded.AppointmentDate.Equal(entity.NormalizeDate(*filter.Date)) {
				continue
			}
			if filter.DoctorID != nil && loaded.Schedule.DoctorID != *filter.DoctorID {
				continue
			}
		}
		out = append(out, loaded)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.After(out[j].AppointmentDate)
		}
		return r.s.data.order[out[i].ID] > r.s.data.order[out[j].ID]
	})
	return out, nil
}

func (r *appointmentRepository) FindByRescheduledFrom(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	if err := r.s.injected("appointments.FindByRescheduledFrom"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.data.appointments {
		if a.RescheduledFromID != nil && *a.RescheduledFromID == id {
			loaded := r.s.loadAppointment(a)
			return &loaded, nil
		}
	}
	return nil, nil
}

func (r *appointmentRepository) Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	if err := r.s.injected("appointments.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.data.appointments[appointment.ID]
	if !ok {
		return nil
	}

	row := *appointment
	row.Patient = entity.Patient{}
	row.Schedule = entity.DoctorSchedule{}
	row.AppointmentDate = entity.NormalizeDate(row.AppointmentDate)
	row.AppointmentFee = stored.AppointmentFee
	row.RescheduledFromID = stored.RescheduledFromID
	row.CreatedAt = stored.CreatedAt
	row.CancelledAt = cloneTime(row.CancelledAt)
	row.PaidAt = cloneTime(row.PaidAt)
	row.RefundedAt = cloneTime(row.RefundedAt)
	r.s.data.appointments[row.ID] = row
	return nil
}

func (r *appointmentRepository) CountActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) (int64, error) {
	if err := r.s.injected("appointments.CountActiveByDoctorAndDate"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	date = entity.NormalizeDate(date)
	var count int64
	for _, a := range r.s.data.appointments {
		if !a.Status.IsActive() || !a.AppointmentDate.Equal(date) {
			continue
		}
		if r.s.data.schedules[a.ScheduleID].DoctorID == doctorID {
			count++
		}
	}
	return count, nil
}

// Bills

type billRepository struct{ s *Store }

func (s *Store) Bills() repository.BillRepository { return &billRepository{s} }

func (r *billRepository) Create(ctx context.Context, db *gorm.DB, bill *entity.Bill) error {
	if err := r.s.injected("bills.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.patients[bill.PatientID]; !ok {
		return foreignKeyViolation("bills_patient_id_fkey")
	}
	if bill.AppointmentID != nil {
		for _, existing := range r.s.data.bills {
			if existing.AppointmentID != nil && *existing.AppointmentID == *bill.AppointmentID {
				return uniqueViolation("idx_bills_appointment_id")
			}
		}
	}

	bill.CreatedAt = time.Now().UTC()
	row := *bill
	row.Items = nil
	row.AppointmentID = cloneUUID(row.AppointmentID)
	row.PaidAt = cloneTime(row.PaidAt)
	r.s.data.bills[row.ID] = row
	r.s.nextSeq(row.ID)
	return nil
}

func (r *billRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error) {
	if err := r.s.injected("bills.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.bills[id]
	if !ok {
		return nil, nil
	}
	loaded := r.s.withItems(b)
	return &loaded, nil
}

func (r *billRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Bill, error) {
	if err := r.s.injected("bills.FindByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, db, id)
}

func (r *billRepository) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.Bill, error) {
	if err := r.s.injected("bills.FindByAppointmentID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.data.bills {
		if b.AppointmentID != nil && *b.AppointmentID == appointmentID {
			loaded := r.s.withItems(b)
			return &loaded, nil
		}
	}
	return nil, nil
}

func (r *billRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.BillFilter) ([]entity.Bill, error) {
	if err := r.s.injected("bills.FindAll"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Bill, 0)
	for _, b := range r.s.data.bills {
		if filter != nil {
			if filter.PatientID != nil && b.PatientID != *filter.PatientID {
				continue
			}
			if filter.PatientName != "" && !strings.Contains(strings.ToLower(b.PatientName), strings.ToLower(filter.PatientName)) {
				continue
			}
			if filter.Paid != nil && b.Paid != *filter.Paid {
				continue
			}
		}
		out = append(out, r.s.withItems(b))
	}

	sort.Slice(out, func(i, j int) bool {
		return r.s.data.order[out[i].ID] > r.s.data.order[out[j].ID]
	})
	return out, nil
}

func (r *billRepository) Update(ctx context.Context, db *gorm.DB, bill *entity.Bill) error {
	if err := r.s.injected("bills.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.data.bills[bill.ID]
	if !ok {
		return nil
	}
	stored.TotalAmount = bill.TotalAmount
	stored.Paid = bill.Paid
	stored.PaymentMethod = bill.PaymentMethod
	stored.PaidAt = cloneTime(bill.PaidAt)
	r.s.data.bills[bill.ID] = stored
	return nil
}

func (r *billRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	if err := r.s.injected("bills.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.data.payments {
		if p.BillID == id {
			return foreignKeyViolation("payments_bill_id_fkey")
		}
	}
	for itemID, item := range r.s.data.items {
		if item.BillID == id {
			delete(r.s.data.items, itemID)
		}
	}
	delete(r.s.data.bills, id)
	return nil
}

func (r *billRepository) SumPaidTotals(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	if err := r.s.injected("bills.SumPaidTotals"); err != nil {
		return decimal.Zero, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := decimal.Zero
	for _, b := range r.s.data.bills {
		if b.Paid {
			total = total.Add(b.TotalAmount)
		}
	}
	return total, nil
}

// Bill items

type billItemRepository struct{ s *Store }

func (s *Store) BillItems() repository.BillItemRepository { return &billItemRepository{s} }

func (r *billItemRepository) Create(ctx context.Context, db *gorm.DB, item *entity.BillItem) error {
	if err := r.s.injected("billItems.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.bills[item.BillID]; !ok {
		return foreignKeyViolation("bill_items_bill_id_fkey")
	}
	r.s.data.items[item.ID] = *item
	r.s.nextSeq(item.ID)
	return nil
}

func (r *billItemRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.BillItem, error) {
	if err := r.s.injected("billItems.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.data.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *billItemRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	if err := r.s.injected("billItems.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.items, id)
	return nil
}

func (r *billItemRepository) DeleteByBillID(ctx context.Context, db *gorm.DB, billID uuid.UUID) error {
	if err := r.s.injected("billItems.DeleteByBillID"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, item := range r.s.data.items {
		if item.BillID == billID {
			delete(r.s.data.items, id)
		}
	}
	return nil
}

// Payments

type paymentRepository struct{ s *Store }

func (s *Store) Payments() repository.PaymentRepository { return &paymentRepository{s} }

func (r *paymentRepository) Create(ctx context.Context, db *gorm.DB, payment *entity.Payment) error {
	if err := r.s.injected("payments.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.bills[payment.BillID]; !ok {
		return foreignKeyViolation("payments_bill_id_fkey")
	}
	for _, existing := range r.s.data.payments {
		if existing.BillID == payment.BillID {
			return uniqueViolation("idx_payments_bill_id")
		}
	}

	row := *payment
	row.Bill = nil
	r.s.data.payments[row.ID] = row
	r.s.nextSeq(row.ID)
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	if err := r.s.injected("payments.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *paymentRepository) FindByBillID(ctx context.Context, db *gorm.DB, billID uuid.UUID) (*entity.Payment, error) {
	if err := r.s.injected("payments.FindByBillID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.payments {
		if p.BillID == billID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *paymentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Payment, error) {
	if err := r.s.injected("payments.FindByPatientID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Payment, 0)
	for _, p := range r.s.data.payments {
		if bill, ok := r.s.data.bills[p.BillID]; ok && bill.PatientID == patientID {
			out = append(out, p)
		}
	}
	r.sortNewestFirst(out)
	return out, nil
}

func (r *paymentRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Payment, error) {
	if err := r.s.injected("payments.FindAll"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.Payment, 0, len(r.s.data.payments))
	for _, p := range r.s.data.payments {
		out = append(out, p)
	}
	r.sortNewestFirst(out)
	return out, nil
}

func (r *paymentRepository) sortNewestFirst(payments []entity.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return r.s.data.order[payments[i].ID] > r.s.data.order[payments[j].ID]
	})
}

func (r *paymentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	if err := r.s.injected("payments.Delete"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.payments[id]; !ok {
		return 0, nil
	}
	delete(r.s.data.payments, id)
	return 1, nil
}

// System settings

type systemSettingRepository struct{ s *Store }

func (s *Store) SystemSettings() repository.SystemSettingRepository {
	return &systemSettingRepository{s}
}

func (r *systemSettingRepository) FindByKey(ctx context.Context, db *gorm.DB, key string) (*entity.SystemSetting, error) {
	if err := r.s.injected("settings.FindByKey"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	setting, ok := r.s.data.settings[key]
	if !ok {
		return nil, nil
	}
	return &setting, nil
}

func (r *systemSettingRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.SystemSetting, error) {
	if err := r.s.injected("settings.FindAll"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.SystemSetting, 0, len(r.s.data.settings))
	for _, setting := range r.s.data.settings {
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettingKey < out[j].SettingKey })
	return out, nil
}

func (r *systemSettingRepository) Upsert(ctx context.Context, db *gorm.DB, setting *entity.SystemSetting) error {
	if err := r.s.injected("settings.Upsert"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	setting.UpdatedAt = time.Now().UTC()
	if existing, ok := r.s.data.settings[setting.SettingKey]; ok {
		setting.ID = existing.ID
	} else {
		r.s.data.nextSettID++
		setting.ID = r.s.data.nextSettID
	}
	r.s.data.settings[setting.SettingKey] = *setting
	return nil
}

// Audit logs

type auditLogRepository struct{ s *Store }

func (s *Store) AuditLogRepo() repository.AuditLogRepository { return &auditLogRepository{s} }

func (r *auditLogRepository) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	if err := r.s.injected("auditLogs.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.data.nextAuditID++
	log.ID = r.s.data.nextAuditID
	log.CreatedAt = time.Now().UTC()
	r.s.data.auditLogs = append(r.s.data.auditLogs, *log)
	return nil
}

func (r *auditLogRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.AuditLog, error) {
	if err := r.s.injected("auditLogs.FindAll"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]entity.AuditLog, 0, len(r.s.data.auditLogs))
	for i := len(r.s.data.auditLogs) - 1; i >= 0; i-- {
		out = append(out, r.s.data.auditLogs[i])
	}
	return out, nil
}

func (r *auditLogRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.AuditLog, error) {
	if err := r.s.injected("auditLogs.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, log := range r.s.data.auditLogs {
		if log.ID == id {
			found := log
			return &found, nil
		}
	}
	return nil, nil
}
