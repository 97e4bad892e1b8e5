package domain

import "time"

// Attendance is the append-only settlement ledger. One row per successful
// check-in. CourseTitle and TokensDeducted are snapshots taken at check-in
// time so later course edits never alter historical entries. The unique
// index on (student, course, checkin_date) is what enforces once-per-day:
// a concurrent duplicate fails the insert, not just an application check.
type Attendance struct {
	ID             uint      `gorm:"primaryKey"`                                   // Primary key
	StudentID      uint      `gorm:"not null;uniqueIndex:idx_checkin_day"`         // Learner who attended
	CourseID       uint      `gorm:"index;not null;uniqueIndex:idx_checkin_day"`   // Course charged
	ClassID        uint      `gorm:"index;not null"`                               // Class attended
	CourseTitle    string    // Snapshot: "<course title> - <class name>"
	TokensDeducted int       `gorm:"not null"`                                     // Price snapshot at check-in time
	CheckinDate    string    `gorm:"size:10;not null;uniqueIndex:idx_checkin_day"` // Calendar day, YYYY-MM-DD
	CheckinTime    time.Time `gorm:"index;not null"`                               // Moment of check-in
}

// Review Model. At most one per (student, course); resubmission overwrites in place.
type Review struct {
	ID            uint   `gorm:"primaryKey"`                              // Primary key
	StudentID     uint   `gorm:"not null;uniqueIndex:idx_review_student_course"` // Reviewing learner
	StudentName   string // Learner nickname snapshot
	CourseID      uint   `gorm:"not null;uniqueIndex:idx_review_student_course"` // Reviewed course
	CourseRating  int    `gorm:"not null;default:5"` // Course quality, 1..5
	TeacherRating int    `gorm:"not null;default:5"` // Teacher quality, 1..5
	Comment       string `gorm:"type:text"`          // Free-text comment
}

// Recording Model. Lesson recordings uploaded by the teacher.
type Recording struct {
	ID            uint      `gorm:"primaryKey"`     // Primary key
	CourseID      uint      `gorm:"index;not null"` // Owning course
	ClassName     string    // Class the recording belongs to
	VideoPath     string    `gorm:"not null"` // Stored file path
	FileName      string    // Display name
	RecordedAt    time.Time `gorm:"autoCreateTime"` // Upload time
	AllowDownload bool      `gorm:"default:false"`  // Learners may download when true
}
