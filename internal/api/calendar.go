package api

import (
	"net/http" // HTTP status codes
	"time"     // Today's weekday and day bounds

	"edusmart/internal/apperr"   // Error codes
	"edusmart/internal/domain"   // Importing domain models
	"edusmart/internal/schedule" // Schedule parsing

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Render colors for the two calendar variants
const (
	teacherEventColor = "#6366f1" // Indigo for the teacher calendar
	learnerEventColor = "#10b981" // Green for the learner calendar
)

// TeacherCalendarHandler builds recurring calendar events for every class of
// the teacher's courses, annotated with today's attendance count. Classes
// with unparseable schedules degrade to no event rather than failing.
func TeacherCalendarHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		courseIDs, err := teacherCourseIDs(db, userID) // Scope to the teacher's courses
		if err != nil {
			apperr.Internal(c, "Failed to load calendar")
			return
		}
		events := []schedule.Event{} // Assembled calendar events
		if len(courseIDs) > 0 {
			var classes []domain.Class // All classes across those courses
			if err := db.Where("course_id IN ?", courseIDs).Find(&classes).Error; err != nil {
				apperr.Internal(c, "Failed to load classes")
				return
			}
			startOfDay, endOfDay := dayBounds(time.Now()) // Today's window for present counts
			for _, cl := range classes {
				rec, ok := schedule.Parse(cl.Schedule)
				if !ok {
					continue // No calendar entry for a malformed schedule
				}
				// Number of learners already checked in today
				var present int64
				db.Model(&domain.Attendance{}).
					Where("class_id = ? AND checkin_time BETWEEN ? AND ?", cl.ID, startOfDay, endOfDay).
					Count(&present)
				ev := schedule.NewEvent(cl.Name, rec, cl.StartDate, cl.EndDate, teacherEventColor)
				ev.Extended = map[string]any{
					"class_name":  cl.Name,       // Class name
					"enrolled":    cl.Enrolled,   // Current enrollments
					"capacity":    cl.Capacity,   // Seat limit
					"present":     present,       // Checked in today
					"meeting_url": cl.MeetingURL, // Meeting link
				}
				events = append(events, ev)
			}
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// LearnerCalendarHandler builds recurring calendar events for the learner's
// enrolled classes, plus the list of classes running today.
func LearnerCalendarHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		var enrollments []domain.Enrollment // All the learner's enrollments
		if err := db.Where("student_id = ?", userID).Find(&enrollments).Error; err != nil {
			apperr.Internal(c, "Failed to load enrollments")
			return
		}
		events := []schedule.Event{}   // Assembled calendar events
		upcoming := []gin.H{}          // Classes running today
		today := time.Now().Weekday()  // Today's weekday for the upcoming list
		for _, e := range enrollments {
			var class domain.Class // Resolve the enrolled class
			if err := db.First(&class, e.ClassID).Error; err != nil {
				continue // Skip enrollments pointing at vanished classes
			}
			var course domain.Course // Resolve the course for the title
			if err := db.First(&course, e.CourseID).Error; err != nil {
				continue
			}
			rec, ok := schedule.Parse(class.Schedule)
			if !ok {
				continue // No calendar entry for a malformed schedule
			}
			ev := schedule.NewEvent(class.Name+" ("+course.Title+")", rec, class.StartDate, class.EndDate, learnerEventColor)
			ev.URL = class.MeetingURL // Clicking the event joins the meeting
			events = append(events, ev)
			// Same-weekday classes show up in the upcoming list
			if rec.RunsOn(today) {
				upcoming = append(upcoming, gin.H{
					"course_name": course.Title,           // Course title
					"class_name":  class.Name,             // Class name
					"time":        rec.Start + " - " + rec.End, // Time range
					"link":        class.MeetingURL,       // Meeting link
				})
			}
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "upcoming": upcoming})
	}
}
