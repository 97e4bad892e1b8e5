package utils

import (
	"testing"

	"edusmart/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func seqDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("seqDB() open failed: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("seqDB() pool failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := conn.AutoMigrate(&domain.RoleSequence{}); err != nil {
		t.Fatalf("seqDB() migrate failed: %v", err)
	}
	return conn
}

func TestNextCustomID(t *testing.T) {
	conn := seqDB(t)
	// The first allocation of a role inserts the counter; the second takes
	// the upsert's conflict branch
	steps := []struct {
		role domain.Role
		want string
	}{
		{domain.RoleLearner, "HS000001"},
		{domain.RoleLearner, "HS000002"},
		{domain.RoleTeacher, "GV000001"},
		{domain.RoleLearner, "HS000003"},
	}
	for _, s := range steps {
		got, err := NextCustomID(conn, s.role)
		if err != nil {
			t.Fatalf("NextCustomID(%s) failed: %v", s.role, err)
		}
		if got != s.want {
			t.Errorf("NextCustomID(%s) = %q, want %q", s.role, got, s.want)
		}
	}
}

func TestNextCustomIDContinuesExistingCounter(t *testing.T) {
	conn := seqDB(t)
	if err := conn.Create(&domain.RoleSequence{Role: domain.RoleLearner, LastValue: 41}).Error; err != nil {
		t.Fatalf("seed counter failed: %v", err)
	}
	got, err := NextCustomID(conn, domain.RoleLearner)
	if err != nil {
		t.Fatalf("NextCustomID failed: %v", err)
	}
	if got != "HS000042" {
		t.Errorf("NextCustomID = %q, want %q", got, "HS000042")
	}
}
