package api

import (
	"net/http"
	"testing"
	"time"

	"edusmart/internal/domain"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func walletOf(t *testing.T, conn *gorm.DB, id uint) int {
	t.Helper()
	var u domain.User
	assert.NoError(t, conn.First(&u, id).Error)
	return u.WalletTokens
}

func TestCheckInSettlement(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	start, end := openWindow()
	class := createClass(t, conn, course, 5, start, end)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)
	assert.Equal(t, http.StatusOK, enroll(t, conn, learner, course, class).Code)

	// First check-in settles 2 tokens and appends one ledger row
	rec := checkIn(t, conn, teacher, learner, course)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["tokens_deducted"])
	assert.Equal(t, 8, walletOf(t, conn, learner.ID))
	var rows int64
	conn.Model(&domain.Attendance{}).Where("student_id = ?", learner.ID).Count(&rows)
	assert.EqualValues(t, 1, rows)

	// Second check-in the same day fails and leaves the wallet untouched
	rec = checkIn(t, conn, teacher, learner, course)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_checked_in", errCode(t, rec))
	assert.Equal(t, 8, walletOf(t, conn, learner.ID))
	conn.Model(&domain.Attendance{}).Where("student_id = ?", learner.ID).Count(&rows)
	assert.EqualValues(t, 1, rows)
}

func TestCheckInNotEnrolled(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)

	rec := checkIn(t, conn, teacher, learner, course)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_enrolled", errCode(t, rec))
	assert.Equal(t, 10, walletOf(t, conn, learner.ID))
}

func TestCheckInDateWindow(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)
	now := time.Now()

	// Class starting tomorrow
	future := createCourse(t, conn, teacher, "Future", 2)
	futureClass := createClass(t, conn, future, 5,
		now.AddDate(0, 0, 1).Format("2006-01-02"), now.AddDate(0, 0, 30).Format("2006-01-02"))
	assert.Equal(t, http.StatusOK, enroll(t, conn, learner, future, futureClass).Code)
	rec := checkIn(t, conn, teacher, learner, future)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "class_not_started", errCode(t, rec))

	// Class that ended yesterday
	past := createCourse(t, conn, teacher, "Past", 2)
	pastClass := createClass(t, conn, past, 5,
		now.AddDate(0, 0, -30).Format("2006-01-02"), now.AddDate(0, 0, -1).Format("2006-01-02"))
	assert.Equal(t, http.StatusOK, enroll(t, conn, learner, past, pastClass).Code)
	rec = checkIn(t, conn, teacher, learner, past)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "class_ended", errCode(t, rec))

	// No failed attempt may touch the wallet or the ledger
	assert.Equal(t, 10, walletOf(t, conn, learner.ID))
	var rows int64
	conn.Model(&domain.Attendance{}).Count(&rows)
	assert.EqualValues(t, 0, rows)
}

func TestCheckInInsufficientTokens(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 5)
	start, end := openWindow()
	class := createClass(t, conn, course, 5, start, end)
	learner := createUser(t, conn, domain.RoleLearner, 3, false)
	assert.Equal(t, http.StatusOK, enroll(t, conn, learner, course, class).Code)

	rec := checkIn(t, conn, teacher, learner, course)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient_tokens", errCode(t, rec))
	// Balance unchanged, no ledger row
	assert.Equal(t, 3, walletOf(t, conn, learner.ID))
	var rows int64
	conn.Model(&domain.Attendance{}).Count(&rows)
	assert.EqualValues(t, 0, rows)
}

func TestCheckInPriceSnapshot(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	start, end := openWindow()
	class := createClass(t, conn, course, 5, start, end)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)
	assert.Equal(t, http.StatusOK, enroll(t, conn, learner, course, class).Code)
	assert.Equal(t, http.StatusOK, checkIn(t, conn, teacher, learner, course).Code)

	// Raising the price later must not alter the historical entry
	assert.NoError(t, conn.Model(&domain.Course{}).Where("id = ?", course.ID).
		Update("price_tokens", 7).Error)
	var entry domain.Attendance
	assert.NoError(t, conn.Where("student_id = ?", learner.ID).First(&entry).Error)
	assert.Equal(t, 2, entry.TokensDeducted)
	assert.Equal(t, "Algebra - Evening Algebra", entry.CourseTitle)
}

func TestAttendanceDayUniqueConstraint(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	start, end := openWindow()
	class := createClass(t, conn, course, 5, start, end)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)

	day := time.Now().Format("2006-01-02")
	first := domain.Attendance{
		StudentID: learner.ID, CourseID: course.ID, ClassID: class.ID,
		TokensDeducted: 2, CheckinDate: day, CheckinTime: time.Now(),
	}
	assert.NoError(t, conn.Create(&first).Error)

	// A second row for the same (student, course, day) must be rejected by
	// the schema itself, independent of any handler-level check
	dup := domain.Attendance{
		StudentID: learner.ID, CourseID: course.ID, ClassID: class.ID,
		TokensDeducted: 2, CheckinDate: day, CheckinTime: time.Now(),
	}
	assert.ErrorIs(t, conn.Create(&dup).Error, gorm.ErrDuplicatedKey)

	// The next calendar day is a fresh uniqueness scope
	nextDay := domain.Attendance{
		StudentID: learner.ID, CourseID: course.ID, ClassID: class.ID,
		TokensDeducted: 2, CheckinDate: time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		CheckinTime: time.Now(),
	}
	assert.NoError(t, conn.Create(&nextDay).Error)

	var rows int64
	conn.Model(&domain.Attendance{}).
		Where("student_id = ? AND course_id = ? AND checkin_date = ?", learner.ID, course.ID, day).
		Count(&rows)
	assert.EqualValues(t, 1, rows)
}

func TestCheckInWrongTeacher(t *testing.T) {
	conn := setupDB(t)
	owner := createUser(t, conn, domain.RoleTeacher, 0, true)
	other := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, owner, "Algebra", 2)
	start, end := openWindow()
	class := createClass(t, conn, course, 5, start, end)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)
	assert.Equal(t, http.StatusOK, enroll(t, conn, learner, course, class).Code)

	// Only the owning teacher may settle attendance for the course
	rec := checkIn(t, conn, other, learner, course)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 10, walletOf(t, conn, learner.ID))
}
