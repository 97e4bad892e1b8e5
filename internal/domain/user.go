package domain

// Role is the closed set of account roles.
type Role string

// Account roles. Registration only accepts Teacher and Learner;
// the admin account is seeded by cmd/migrate.
const (
	RoleTeacher Role = "teacher"
	RoleLearner Role = "learner"
	RoleAdmin   Role = "admin"
)

// CustomIDPrefix returns the human-readable ID prefix for the role.
func (r Role) CustomIDPrefix() string {
	if r == RoleLearner {
		return "HS" // learner IDs look like HS000001
	}
	return "GV" // teacher IDs look like GV000001
}

// ParseRegisterRole validates a role string coming from registration.
func ParseRegisterRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleTeacher, RoleLearner:
		return Role(s), true
	}
	return "", false
}

// KycStatus is the verification state machine: none -> pending -> approved|rejected.
// A rejected user may re-submit (rejected -> pending).
type KycStatus string

// KYC states.
const (
	KycNone     KycStatus = "none"
	KycPending  KycStatus = "pending"
	KycApproved KycStatus = "approved"
	KycRejected KycStatus = "rejected"
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey"`                  // Primary key
	CustomID     string    `gorm:"unique;not null"`             // Human-readable ID (GV/HS + 6 digits)
	Nickname     string    `gorm:"not null"`                    // Display name as entered at registration
	Username     string    `gorm:"unique;not null"`             // Generated login email
	Password     string    `gorm:"not null"`                    // Hashed password
	Role         Role      `gorm:"size:16;not null"`            // teacher, learner or admin
	WalletTokens int       `gorm:"not null;default:10"`         // Token balance, debited only by check-in settlement
	KycStatus    KycStatus `gorm:"size:16;default:none"`        // Verification state
	KycType      string    // Claimed KYC type (student_creator or lecturer)
	KycData      string    `gorm:"type:text"`                   // JSON snapshot of the submitted form data
	KycImages    string    `gorm:"type:text"`                   // JSON map of stored document paths
	IsVerified   bool      `gorm:"default:false"`               // KYC gate for privileged actions
	Avatar       string    `gorm:"default:/default-avatar.png"` // Avatar path
	CreatedAt    int64     `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
}

// RoleSequence backs per-role custom ID allocation. One row per role,
// incremented atomically inside the registration transaction.
type RoleSequence struct {
	Role      Role `gorm:"primaryKey;size:16"` // Role this counter belongs to
	LastValue int  `gorm:"not null;default:0"` // Last allocated numeric suffix
}
