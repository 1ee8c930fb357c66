package models

// Admin is a gallery administrator. There is a single role.
type Admin struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
}
