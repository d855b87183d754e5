package model

// Availability 讲师可用时间表 — 对应 availabilities
// 每条记录对应一次提交中的某一天
type Availability struct {
	AvailabilityID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"availability_id"`
	LecturerID     string      `gorm:"type:uuid;not null;index"                       json:"lecturer_id"`
	DayID          int         `gorm:"type:smallint;not null"                         json:"day_id"`
	DayName        string      `gorm:"type:varchar(20);not null"                      json:"day_name"`
	Times          StringArray `gorm:"type:text[];not null"                           json:"times"`
	TimeRanges     RangeList   `gorm:"type:jsonb;not null"                            json:"time_ranges"`
	SoftDeleteModel
}

// TableName 指定表名
func (Availability) TableName() string { return "availabilities" }
