package models

import "time"

// Roles recognized by the store. A role is assigned at registration and
// never changes at runtime.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered customer or administrator.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash, never serialized
	Avatar    string    `json:"avatar,omitempty" gorm:"type:varchar(500)"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(50)"`
	Address   string    `json:"address,omitempty" gorm:"type:varchar(500)"`
	Role      string    `json:"role" gorm:"type:varchar(20);default:user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds elevated privilege.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
