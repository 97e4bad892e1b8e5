package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Cache key building
	"time"     // Day windows for the series

	"edusmart/internal/apperr" // Error codes
	"edusmart/internal/domain" // Importing domain models
	"edusmart/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// teacherCourseIDs returns the IDs of every course the teacher owns.
func teacherCourseIDs(db *gorm.DB, teacherID any) ([]uint, error) {
	var ids []uint
	err := db.Model(&domain.Course{}).Where("teacher_id = ?", teacherID).Pluck("id", &ids).Error
	return ids, err
}

// TeacherStatsHandler returns dashboard aggregates for the teacher: totals,
// a 7-day revenue/attendance series and the per-course enrollment split.
func TeacherStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		courseIDs, err := teacherCourseIDs(db, userID) // Scope everything to the teacher's courses
		if err != nil {
			apperr.Internal(c, "Failed to load stats")
			return
		}
		// The ledger is the canonical revenue source
		var totalRevenue int64
		var totalStudents, totalClasses int64
		if len(courseIDs) > 0 {
			if err := db.Model(&domain.Attendance{}).Where("course_id IN ?", courseIDs).
				Select("COALESCE(SUM(tokens_deducted), 0)").Scan(&totalRevenue).Error; err != nil {
				apperr.Internal(c, "Failed to load stats")
				return
			}
			if err := db.Model(&domain.Enrollment{}).Where("course_id IN ?", courseIDs).
				Count(&totalStudents).Error; err != nil {
				apperr.Internal(c, "Failed to load stats")
				return
			}
			if err := db.Model(&domain.Class{}).Where("course_id IN ?", courseIDs).
				Count(&totalClasses).Error; err != nil {
				apperr.Internal(c, "Failed to load stats")
				return
			}
		}
		// 7-day revenue and attendance series, oldest day first
		labels := make([]string, 0, 7)
		revenue := make([]int64, 0, 7)
		attendance := make([]int64, 0, 7)
		for i := 6; i >= 0; i-- {
			day := time.Now().AddDate(0, 0, -i)
			s, e := dayBounds(day) // Local day window
			labels = append(labels, day.Format("02/01"))
			var rev, att int64
			if len(courseIDs) > 0 {
				if err := db.Model(&domain.Attendance{}).
					Where("course_id IN ? AND checkin_time BETWEEN ? AND ?", courseIDs, s, e).
					Select("COALESCE(SUM(tokens_deducted), 0)").Scan(&rev).Error; err != nil {
					apperr.Internal(c, "Failed to load stats")
					return
				}
				if err := db.Model(&domain.Attendance{}).
					Where("course_id IN ? AND checkin_time BETWEEN ? AND ?", courseIDs, s, e).
					Count(&att).Error; err != nil {
					apperr.Internal(c, "Failed to load stats")
					return
				}
			}
			revenue = append(revenue, rev)
			attendance = append(attendance, att)
		}
		// Per-course enrollment distribution for the pie chart
		type slice struct {
			Title string `json:"title"` // Course title
			Count int64  `json:"count"` // Enrollments
		}
		var pie []slice
		if len(courseIDs) > 0 {
			if err := db.Model(&domain.Enrollment{}).
				Select("courses.title AS title, COUNT(enrollments.id) AS count").
				Joins("JOIN courses ON courses.id = enrollments.course_id").
				Where("enrollments.course_id IN ?", courseIDs).
				Group("courses.title").
				Scan(&pie).Error; err != nil {
				apperr.Internal(c, "Failed to load stats")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"total_revenue":  totalRevenue,       // Sum over the ledger
			"total_students": totalStudents,      // Enrollment count
			"total_courses":  len(courseIDs),     // Courses owned
			"total_classes":  totalClasses,       // Classes across those courses
			"chart": gin.H{
				"labels":     labels,     // Day labels, oldest first
				"revenue":    revenue,    // Tokens per day
				"attendance": attendance, // Check-ins per day
			},
			"enrollment_split": pie, // Per-course distribution
		})
	}
}

// FinanceEntry is one row of the teacher's settlement log
type FinanceEntry struct {
	Time    time.Time `json:"time"`    // Settlement moment
	Content string    `json:"content"` // Ledger title snapshot
	Student string    `json:"student"` // Learner nickname
	Amount  int       `json:"amount"`  // Tokens settled
}

// TeacherFinanceHandler returns the teacher's recent settlement log,
// paginated and cached per page.
func TeacherFinanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		page, pageSize := pageParams(c)  // Pagination query params
		ctx := context.Background()      // Context for Redis operations
		cacheKey := "teacher:finance:" + strconv.Itoa(int(userID.(uint))) +
			":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var entries []FinanceEntry // Settlement log page
		// Try the cache first
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &entries); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"entries": entries, "page": page, "cached": true})
				return
			}
		}
		courseIDs, err := teacherCourseIDs(db, userID) // Scope to the teacher's courses
		if err != nil {
			apperr.Internal(c, "Failed to load finance log")
			return
		}
		entries = []FinanceEntry{}
		if len(courseIDs) > 0 {
			// Join the learner nickname onto the ledger rows
			if err := db.Model(&domain.Attendance{}).
				Select("attendances.checkin_time AS time, attendances.course_title AS content, users.nickname AS student, attendances.tokens_deducted AS amount").
				Joins("JOIN users ON users.id = attendances.student_id").
				Where("attendances.course_id IN ?", courseIDs).
				Order("attendances.checkin_time DESC").
				Offset((page - 1) * pageSize).
				Limit(pageSize).
				Scan(&entries).Error; err != nil {
				apperr.Internal(c, "Failed to load finance log")
				return
			}
		}
		// Cache the page for 60 seconds
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, entries, 60*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries, "page": page, "cached": false})
	}
}

// LearnerStatsHandler returns the learner's dashboard aggregates: total
// spend, classes attended and active course count.
func LearnerStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		ctx := context.Background() // Context for Redis operations
		cacheKey := "learner:stats:" + strconv.Itoa(int(userID.(uint)))
		var stats struct {
			TotalSpent      int64 `json:"total_spent"`      // Ledger sum
			ClassesAttended int64 `json:"classes_attended"` // Ledger count
			ActiveCourses   int64 `json:"active_courses"`   // Enrollment count
		}
		// Try the cache first
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &stats); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"stats": stats, "cached": true})
				return
			}
		}
		// The ledger is the canonical spend source
		if err := db.Model(&domain.Attendance{}).Where("student_id = ?", userID).
			Select("COALESCE(SUM(tokens_deducted), 0)").Scan(&stats.TotalSpent).Error; err != nil {
			apperr.Internal(c, "Failed to load stats")
			return
		}
		if err := db.Model(&domain.Attendance{}).Where("student_id = ?", userID).
			Count(&stats.ClassesAttended).Error; err != nil {
			apperr.Internal(c, "Failed to load stats")
			return
		}
		if err := db.Model(&domain.Enrollment{}).Where("student_id = ?", userID).
			Count(&stats.ActiveCourses).Error; err != nil {
			apperr.Internal(c, "Failed to load stats")
			return
		}
		// Cache for 60 seconds; invalidated by enroll and check-in
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, stats, 60*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats, "cached": false})
	}
}

// WalletHistoryHandler returns the learner's attendance ledger, newest
// first, paginated and cached per page.
func WalletHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			apperr.JSON(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "Unauthorized")
			return
		}
		page, pageSize := pageParams(c) // Pagination query params
		ctx := context.Background()     // Context for Redis operations
		cacheKey := "wallet:history:" + strconv.Itoa(int(userID.(uint))) +
			":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var cached struct {
			Logs       []domain.Attendance `json:"logs"`        // Ledger page
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total ledger rows
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		if rdb != nil {
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{
					"logs":        cached.Logs,       // Cached ledger page
					"page":        cached.Page,       // Current page
					"page_size":   cached.PageSize,   // Page size
					"total":       cached.Total,      // Total ledger rows
					"total_pages": cached.TotalPages, // Total pages
					"cached":      true,
				})
				return
			}
		}
		var total int64 // Count total ledger rows for pagination
		if err := db.Model(&domain.Attendance{}).
			Where("student_id = ?", userID).
			Count(&total).Error; err != nil {
			apperr.Internal(c, "Failed to count wallet history")
			return
		}
		var logs []domain.Attendance // Fetch the requested page
		if err := db.Where("student_id = ?", userID).
			Order("checkin_time DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&logs).Error; err != nil {
			apperr.Internal(c, "Failed to load wallet history")
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		cached.Logs, cached.Page, cached.PageSize, cached.Total, cached.TotalPages = logs, page, pageSize, total, totalPages
		// Cache the result for 60 seconds
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, cached, 60*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{
			"logs":        logs,       // Ledger page
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total ledger rows
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		})
	}
}

// pageParams reads page/page_size query params with the usual defaults
func pageParams(c *gin.Context) (int, int) {
	page := 1      // Default page
	pageSize := 20 // Default page size
	// If page exists in query
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// If page_size exists in query
	if ps := c.Query("page_size"); ps != "" {
		// Convert page_size to integer
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}
