package models

import "time"

// ScheduleDay is a school day of the week.
type ScheduleDay string

const (
	DayMonday    ScheduleDay = "Monday"
	DayTuesday   ScheduleDay = "Tuesday"
	DayWednesday ScheduleDay = "Wednesday"
	DayThursday  ScheduleDay = "Thursday"
	DayFriday    ScheduleDay = "Friday"
)

// Valid reports whether the day is a supported school day.
func (d ScheduleDay) Valid() bool {
	switch d {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday:
		return true
	default:
		return false
	}
}

// ScheduleSection is a fixed daily time slot.
type ScheduleSection string

const (
	SectionFirst  ScheduleSection = "1st Section"
	SectionSecond ScheduleSection = "2nd Section"
	SectionBreak  ScheduleSection = "Break"
	SectionThird  ScheduleSection = "3rd Section"
	SectionFourth ScheduleSection = "4th Section"
)

// Valid reports whether the section is a supported slot.
func (s ScheduleSection) Valid() bool {
	switch s {
	case SectionFirst, SectionSecond, SectionBreak, SectionThird, SectionFourth:
		return true
	default:
		return false
	}
}

// TimeRange returns the wall-clock span for the section.
func (s ScheduleSection) TimeRange() string {
	switch s {
	case SectionFirst:
		return "9:00 am - 10:30 am"
	case SectionSecond:
		return "10:45 am - 12:15 pm"
	case SectionBreak:
		return "12:15 pm - 12:45 pm"
	case SectionThird:
		return "12:45 pm - 1:15 pm"
	case SectionFourth:
		return "2:00 pm - 3:30 pm"
	default:
		return ""
	}
}

// Schedule is a weekly timetable slot for a class. Subject is optional;
// break slots carry no subject.
type Schedule struct {
	ID        string          `db:"id" json:"id"`
	ClassID   string          `db:"class_id" json:"class_id"`
	SubjectID *string         `db:"subject_id" json:"subject_id,omitempty"`
	DayOfWeek ScheduleDay     `db:"day_of_week" json:"day_of_week"`
	Section   ScheduleSection `db:"section" json:"section"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ScheduleDetail enriches a slot with class and subject names.
type ScheduleDetail struct {
	Schedule
	ClassName   string  `db:"class_name" json:"class_name"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
}

// ScheduleFilter scopes listing queries.
type ScheduleFilter struct {
	ClassID   string
	SubjectID string
	DayOfWeek ScheduleDay
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
