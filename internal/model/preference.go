package model

// Preference 学生时间偏好表 — 对应 preferences
// 每条记录对应某学生对某课程在某一天的偏好小时
type Preference struct {
	PreferenceID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"preference_id"`
	StudentID    string      `gorm:"type:uuid;not null;index"                       json:"student_id"`
	CourseID     string      `gorm:"type:uuid;not null;index"                       json:"course_id"`
	DayID        int         `gorm:"type:smallint;not null"                         json:"day_id"`
	DayName      string      `gorm:"type:varchar(20);not null"                      json:"day_name"`
	Times        StringArray `gorm:"type:text[];not null"                           json:"times"`
	TimeRanges   RangeList   `gorm:"type:jsonb;not null"                            json:"time_ranges"`
	SoftDeleteModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Preference) TableName() string { return "preferences" }
