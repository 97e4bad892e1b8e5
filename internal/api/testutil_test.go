package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"edusmart/internal/db"
	"edusmart/internal/domain"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupDB opens a fresh in-memory database with the full schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // Duplicate-key violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		t.Fatalf("setupDB() open failed: %v", err)
	}
	// A second pooled connection would see an empty :memory: database
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("setupDB() pool failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("setupDB() migrate failed: %v", err)
	}
	return conn
}

// asUser injects the authenticated user the way the JWT middleware would.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Next()
	}
}

// doJSON performs a JSON request against a single handler mounted behind
// the given middleware and returns the recorded response. route is the gin
// pattern ("/courses/:id"), path the concrete request target.
func doJSON(t *testing.T, method, route, path string, body any, h gin.HandlerFunc, mw ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	handlers := append(append([]gin.HandlerFunc{}, mw...), h)
	r.Handle(method, route, handlers...)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("doJSON() encode failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode() failed: %v (body %q)", err, rec.Body.String())
	}
	return m
}

// errCode extracts the machine-readable error code from a response.
func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := decode(t, rec)["code"].(string)
	return code
}

// itoa renders a record ID for a URL path.
func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

var userSeq int // Distinguishes generated test identities

// createUser inserts a user directly, bypassing the register handler.
func createUser(t *testing.T, conn *gorm.DB, role domain.Role, tokens int, verified bool) domain.User {
	t.Helper()
	userSeq++
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("createUser() hash failed: %v", err)
	}
	u := domain.User{
		CustomID:     fmt.Sprintf("%s9%05d", role.CustomIDPrefix(), userSeq),
		Nickname:     fmt.Sprintf("Test User %d", userSeq),
		Username:     fmt.Sprintf("user%d@test", userSeq),
		Password:     string(hash),
		Role:         role,
		WalletTokens: tokens,
		KycStatus:    domain.KycNone,
		IsVerified:   verified,
	}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return u
}

// createCourse inserts a course owned by the given teacher.
func createCourse(t *testing.T, conn *gorm.DB, teacher domain.User, title string, price int) domain.Course {
	t.Helper()
	course := domain.Course{
		Title:       title,
		PriceTokens: price,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Nickname,
	}
	if err := conn.Create(&course).Error; err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return course
}

// createClass inserts a class with an open date window around today.
func createClass(t *testing.T, conn *gorm.DB, course domain.Course, capacity int, start, end string) domain.Class {
	t.Helper()
	class := domain.Class{
		Name:      "Evening " + course.Title,
		Schedule:  "2,4,6 (19:00-21:00)",
		StartDate: start,
		EndDate:   end,
		Capacity:  capacity,
		CourseID:  course.ID,
	}
	if err := conn.Create(&class).Error; err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return class
}

// enroll performs an enrollment request as the given learner.
func enroll(t *testing.T, conn *gorm.DB, learner domain.User, course domain.Course, class domain.Class) *httptest.ResponseRecorder {
	t.Helper()
	body := EnrollRequest{CourseID: course.ID, ClassID: class.ID}
	return doJSON(t, http.MethodPost, "/enroll", "/enroll", body, EnrollHandler(conn), asUser(learner.ID))
}

// checkIn performs a check-in request as the given teacher.
func checkIn(t *testing.T, conn *gorm.DB, teacher, learner domain.User, course domain.Course) *httptest.ResponseRecorder {
	t.Helper()
	body := CheckInRequest{LearnerID: learner.ID, CourseID: course.ID}
	return doJSON(t, http.MethodPost, "/attendance", "/attendance", body, CheckInHandler(conn), asUser(teacher.ID))
}
