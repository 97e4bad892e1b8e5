package domain

// Course Model
type Course struct {
	ID          uint   `gorm:"primaryKey"`          // Primary key
	Title       string `gorm:"not null"`            // Course title
	Description string // Free-text description
	PriceTokens int    `gorm:"not null;default:1"`  // Tokens charged per attended session
	ImageURL    string // Cover image path
	TeacherID   uint   `gorm:"index;not null"`      // Owning teacher
	TeacherName string // Teacher nickname snapshot for listings
	CreatedAt   int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// Class Model. A class is one scheduled instance of a course.
type Class struct {
	ID         uint   `gorm:"primaryKey"`          // Primary key
	Name       string `gorm:"not null"`            // Class name
	Schedule   string // Recurrence string, e.g. "2,4,6 (08:00-10:00)"
	StartDate  string `gorm:"size:10"`             // First day, YYYY-MM-DD
	EndDate    string `gorm:"size:10"`             // Last day (inclusive), YYYY-MM-DD
	Capacity   int    `gorm:"not null;default:30"` // Maximum enrollments
	Enrolled   int    `gorm:"not null;default:0"`  // Current enrollments, mutated only by the enroll transaction
	CourseID   uint   `gorm:"index;not null"`      // Owning course
	MeetingURL string // Optional meeting link
}

// Enrollment ties one learner to one class. At most one row per
// (student, course) pair: a learner cannot join two classes of the same course.
type Enrollment struct {
	ID        uint  `gorm:"primaryKey"`                               // Primary key
	StudentID uint  `gorm:"not null;uniqueIndex:idx_student_course"`  // Enrolled learner
	CourseID  uint  `gorm:"not null;uniqueIndex:idx_student_course"`  // Course of the chosen class
	ClassID   uint  `gorm:"index;not null"`                           // Chosen class
	CreatedAt int64 `gorm:"autoCreateTime:milli"`                     // Enrollment date in milliseconds
}
