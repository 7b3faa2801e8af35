package models

// Doctor is the directory profile of a practising doctor. The scheduling core
// only reads it: ID and IsApproved decide whether a booking may be made, and
// UserID maps an authenticated doctor account to the profile.
type Doctor struct {
	BaseModel
	UserID     string `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	Department string `gorm:"size:100" json:"department"`
	IsApproved bool   `gorm:"default:false" json:"isApproved"`
}
