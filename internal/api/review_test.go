package api

import (
	"net/http"
	"testing"

	"edusmart/internal/domain"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func submitReview(t *testing.T, conn *gorm.DB, learner domain.User, req ReviewRequest) int {
	t.Helper()
	rec := doJSON(t, http.MethodPost, "/reviews", "/reviews", req, SubmitReviewHandler(conn), asUser(learner.ID))
	return rec.Code
}

func TestSubmitReviewUpsert(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)

	code := submitReview(t, conn, learner, ReviewRequest{
		CourseID: course.ID, CourseRating: 3, TeacherRating: 4, Comment: "ok",
	})
	assert.Equal(t, http.StatusOK, code)

	// A second submission replaces the first instead of adding a row
	code = submitReview(t, conn, learner, ReviewRequest{
		CourseID: course.ID, CourseRating: 5, TeacherRating: 5, Comment: "great after all",
	})
	assert.Equal(t, http.StatusOK, code)

	var reviews []domain.Review
	assert.NoError(t, conn.Where("course_id = ?", course.ID).Find(&reviews).Error)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].CourseRating)
	assert.Equal(t, 5, reviews[0].TeacherRating)
	assert.Equal(t, "great after all", reviews[0].Comment)
}

func TestSubmitReviewRejectsOutOfRange(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	learner := createUser(t, conn, domain.RoleLearner, 10, false)

	code := submitReview(t, conn, learner, ReviewRequest{
		CourseID: course.ID, CourseRating: 6, TeacherRating: 4,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code = submitReview(t, conn, learner, ReviewRequest{
		CourseID: course.ID, CourseRating: 4, TeacherRating: 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCourseAverageRounding(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)
	a := createUser(t, conn, domain.RoleLearner, 10, false)
	b := createUser(t, conn, domain.RoleLearner, 10, false)
	c := createUser(t, conn, domain.RoleLearner, 10, false)

	// (5 + 4 + 4) / 3 = 4.333... -> 4.3
	for i, rating := range []int{5, 4, 4} {
		learner := []domain.User{a, b, c}[i]
		code := submitReview(t, conn, learner, ReviewRequest{
			CourseID: course.ID, CourseRating: rating, TeacherRating: rating,
		})
		assert.Equal(t, http.StatusOK, code)
	}

	rec := doJSON(t, http.MethodGet, "/courses/:id/reviews", "/courses/"+itoa(course.ID)+"/reviews",
		nil, CourseReviewsHandler(conn))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.InDelta(t, 4.3, body["average_rating"].(float64), 0.001)
	assert.Len(t, body["reviews"].([]any), 3)
}

func TestCourseAverageEmpty(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	course := createCourse(t, conn, teacher, "Algebra", 2)

	rec := doJSON(t, http.MethodGet, "/courses/:id/reviews", "/courses/"+itoa(course.ID)+"/reviews",
		nil, CourseReviewsHandler(conn))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode(t, rec)["average_rating"].(float64))
}

func TestTeacherRatingSpansCourses(t *testing.T) {
	conn := setupDB(t)
	teacher := createUser(t, conn, domain.RoleTeacher, 0, true)
	algebra := createCourse(t, conn, teacher, "Algebra", 2)
	biology := createCourse(t, conn, teacher, "Biology", 3)
	a := createUser(t, conn, domain.RoleLearner, 10, false)
	b := createUser(t, conn, domain.RoleLearner, 10, false)

	assert.Equal(t, http.StatusOK, submitReview(t, conn, a, ReviewRequest{
		CourseID: algebra.ID, CourseRating: 3, TeacherRating: 5,
	}))
	assert.Equal(t, http.StatusOK, submitReview(t, conn, b, ReviewRequest{
		CourseID: biology.ID, CourseRating: 3, TeacherRating: 4,
	}))

	// (5 + 4) / 2 = 4.5 across both courses
	rec := doJSON(t, http.MethodGet, "/teachers/:id/rating", "/teachers/"+itoa(teacher.ID)+"/rating",
		nil, TeacherRatingHandler(conn))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.InDelta(t, 4.5, body["average_rating"].(float64), 0.001)
	assert.EqualValues(t, 2, body["review_count"])
}
