package models

import "time"

const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName string `gorm:"column:first_name;size:128;not null" json:"firstName"`
	LastName  string `gorm:"column:last_name;size:128;not null" json:"lastName"`
	Email     string `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"column:password;size:255;not null" json:"-"`
	Role      string `gorm:"column:role;size:32;not null;index" json:"role"`

	Phone        string `gorm:"column:phone;size:64" json:"phone,omitempty"`
	ProfileImage string `gorm:"column:profile_image;size:512" json:"profileImage,omitempty"`
	Bio          string `gorm:"column:bio;type:text" json:"bio,omitempty"`
	IsVerified   bool   `gorm:"column:is_verified;default:false" json:"isVerified"`

	// bcrypt hashes of the most recently issued tokens. The refresh column
	// doubles as password-reset token storage.
	AuthAccessToken   string     `gorm:"column:auth_access_token;size:255" json:"-"`
	AuthRefreshToken  string     `gorm:"column:auth_refresh_token;size:255" json:"-"`
	LastAuthenticated *time.Time `gorm:"column:last_authenticated" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Properties []Property `gorm:"foreignKey:OwnerID" json:"properties,omitempty"`
	Bookings   []Booking  `gorm:"foreignKey:TenantID" json:"bookings,omitempty"`
	Favorites  []Favorite `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
