package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	// Duration 每周课时数，也是学生偏好的最少选择格数
	Duration   int     `gorm:"type:smallint;not null;default:1" json:"duration"`
	LecturerID *string `gorm:"type:uuid"                        json:"lecturer_id,omitempty"`
	Scheduled  bool    `gorm:"not null;default:false"           json:"scheduled"`
	SoftDeleteModel

	// 关联
	Lecturer *User `gorm:"foreignKey:LecturerID;references:UserID" json:"lecturer,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
