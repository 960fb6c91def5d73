package Models

import "gorm.io/gorm"

// User is a dashboard account, not a customer. Customers are identified by
// sessions only.
type User struct {
	gorm.Model
	Email      string `json:"email" gorm:"not null;uniqueIndex"`
	Password   []byte `json:"-" gorm:"not null"`
	Name       string `json:"name"`
	Permission int    `json:"permission"`
}
