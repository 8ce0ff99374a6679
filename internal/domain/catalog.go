// Package domain - catalog entities.
//
// These are the uniform reference-data models behind the CRUD surface: areas,
// roles, products, users, and the three-level classification taxonomy. They
// carry no workflow logic; reads filter on the Active flag and removal is a
// soft deactivation.
package domain

import "time"

// Area is an organizational unit. One area is designated the "claims area";
// every responsible id in a routing rule must belong to it.
type Area struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Area.
func (Area) TableName() string { return "areas" }

// Role is a staff role used by the authorization surface.
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Role.
func (Role) TableName() string { return "roles" }

// Product is the product or service a claim complains about.
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// User is a staff member who can be assigned responsibility for claims.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	AreaID    uint      `json:"area_id" gorm:"not null;index"`
	RoleID    uint      `json:"role_id" gorm:"not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Classification is the top level of the claim taxonomy.
type Classification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Classification.
func (Classification) TableName() string { return "classifications" }

// Class is the middle taxonomy level, scoped to a classification.
type Class struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ClassificationID uint      `json:"classification_id" gorm:"not null;index"`
	Name             string    `json:"name" gorm:"type:varchar(255);not null"`
	Active           bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName returns the database table name for Class.
func (Class) TableName() string { return "classes" }

// Cause is the leaf taxonomy level, scoped to a class.
type Cause struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassID   uint      `json:"class_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Cause.
func (Cause) TableName() string { return "causes" }
