package model

// 角色
const (
	RoleAdmin    = "admin"
	RolePlanner  = "planner"
	RoleLecturer = "lecturer"
	RoleStudent  = "student"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	IndexNumber  string `gorm:"type:varchar(20)"                               json:"index_number,omitempty"`
	Major        string `gorm:"type:varchar(100)"                              json:"major,omitempty"`
	// 讲师注册后需管理员确认才能登录；其他角色创建即确认
	Confirmed bool `gorm:"not null;default:false" json:"confirmed"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RolePlanner, RoleLecturer, RoleStudent:
		return true
	}
	return false
}
