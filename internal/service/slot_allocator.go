package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// DailyCapacity is the number of active appointments a doctor may hold on one date.
	DailyCapacity = 20
	// RescheduleHorizonDays bounds the forward search for a free date.
	RescheduleHorizonDays = 60
)

var (
	ErrDayMismatch      = errors.New("requested date does not fall on the schedule day")
	ErrCapacityExceeded = errors.New("doctor has reached the daily appointment limit")
	ErrNoSlotAvailable  = errors.New("no available slot found")
)

// SlotAllocator validates requested dates against a weekly schedule and
// enforces the per doctor daily capacity.
type SlotAllocator interface {
	CheckAvailability(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, scheduleDay string, date time.Time) error
	FindNextAvailable(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, scheduleDay string, from time.Time) (time.Time, error)
}

type slotAllocator struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
}

func NewSlotAllocator(log *logrus.Logger, appointmentRepo repository.AppointmentRepository) SlotAllocator {
	return &slotAllocator{
		log:             log,
		appointmentRepo: appointmentRepo,
	}
}

func (s *slotAllocator) CheckAvailability(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, scheduleDay string, date time.Time) error {
	date = entity.NormalizeDate(date)

	if !matchesDay(scheduleDay, date) {
		requested := titleDay(date.Weekday().String())
		configured := titleDay(scheduleDay)
		return apperror.InvalidTransition(
			ErrDayMismatch,
			fmt.Sprintf("doctor is not available on %s, this schedule is for %ss", requested, configured),
			map[string]interface{}{
				"requested_date": date.Format(time.DateOnly),
				"requested_day":  requested,
				"schedule_day":   configured,
			},
		)
	}

	full, err := s.isFull(ctx, db, doctorID, date)
	if err != nil {
		return err
	}
	if full {
		return apperror.CapacityExceeded(
			ErrCapacityExceeded,
			fmt.Sprintf("doctor has reached the maximum of %d appointments on %s", DailyCapacity, date.Format(time.DateOnly)),
			map[string]interface{}{
				"doctor_id": doctorID,
				"date":      date.Format(time.DateOnly),
				"capacity":  DailyCapacity,
			},
		)
	}

	return nil
}

// FindNextAvailable scans forward one day at a time starting the day after
// from. Candidates are limited to dates strictly before from+RescheduleHorizonDays.
func (s *slotAllocator) FindNextAvailable(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, scheduleDay string, from time.Time) (time.Time, error) {
	from = entity.NormalizeDate(from)
	limit := from.AddDate(0, 0, RescheduleHorizonDays)

	for candidate := from.AddDate(0, 0, 1); candidate.Before(limit); candidate = candidate.AddDate(0, 0, 1) {
		if !matchesDay(scheduleDay, candidate) {
			continue
		}

		full, err := s.isFull(ctx, db, doctorID, candidate)
		if err != nil {
			return time.Time{}, err
		}
		if !full {
			return candidate, nil
		}
	}

	return time.Time{}, apperror.New(
		apperror.KindNotFound,
		ErrNoSlotAvailable,
		fmt.Sprintf("no available slot found within the next %d days", RescheduleHorizonDays),
		map[string]interface{}{
			"doctor_id": doctorID,
			"from":      from.Format(time.DateOnly),
		},
	)
}

func (s *slotAllocator) isFull(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) (bool, error) {
	count, err := s.appointmentRepo.CountActiveByDoctorAndDate(ctx, db, doctorID, date)
	if err != nil {
		s.log.Warnf("Failed to count appointments for doctor %s on %s: %+v", doctorID, date.Format(time.DateOnly), err)
		return false, err
	}
	return count >= DailyCapacity, nil
}

// matchesDay compares canonical weekday names. An unknown schedule day never matches.
func matchesDay(scheduleDay string, date time.Time) bool {
	weekday, ok := entity.ParseWeekday(scheduleDay)
	return ok && weekday == date.Weekday()
}

func titleDay(day string) string {
	day = entity.CanonicalDay(day)
	if day == "" {
		return day
	}
	return day[:1] + strings.ToLower(day[1:])
}
