package model

// Group 学生小组表 — 对应 student_groups
type Group struct {
	GroupID    string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name       string      `gorm:"type:varchar(100);not null"                     json:"name"`
	StudentIDs StringArray `gorm:"type:text[];not null;default:'{}'"              json:"student_ids"`
	CourseIDs  StringArray `gorm:"type:text[];not null;default:'{}'"              json:"course_ids"`
	SoftDeleteModel
}

// TableName 指定表名（group 为 SQL 保留字）
func (Group) TableName() string { return "student_groups" }
