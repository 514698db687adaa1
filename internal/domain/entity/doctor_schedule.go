package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DoctorSchedule is a doctor's recurring weekly availability window.
// Day holds a weekday name ("Monday", "MONDAY", ...) as entered by staff.
type DoctorSchedule struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Day       string    `gorm:"type:varchar(20);not null" json:"day"`
	StartTime string    `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime   string    `gorm:"type:varchar(8);not null" json:"end_time"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}

var weekdaysByName = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// CanonicalDay upper-cases and trims a weekday name.
func CanonicalDay(day string) string {
	return strings.ToUpper(strings.TrimSpace(day))
}

// ParseWeekday resolves a weekday name in any case.
func ParseWeekday(day string) (time.Weekday, bool) {
	wd, ok := weekdaysByName[CanonicalDay(day)]
	return wd, ok
}
