package model

// ── 用户角色 ──

const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleTA        = "ta"
	RoleAdmin     = "admin"
)

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleProfessor, RoleTA, RoleAdmin:
		return true
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	UserID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	UniversityID     string  `gorm:"type:varchar(20);not null;unique"               json:"university_id"`
	FullName         string  `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Email            string  `gorm:"type:varchar(255);not null;unique"              json:"email"`
	PasswordHash     string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role             string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Faculty          string  `gorm:"type:varchar(100)"                              json:"faculty,omitempty"`
	AcademicYear     *int    `json:"academic_year,omitempty"`
	InfractionsCount int     `gorm:"not null;default:0"                             json:"infractions_count"`
	IsBlacklisted    bool    `gorm:"not null;default:false"                         json:"is_blacklisted"`
	BlacklistNote    *string `gorm:"type:varchar(500)"                              json:"blacklist_note,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
