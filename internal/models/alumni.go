package models

import "time"

// Department enumerates the programmes an alumni can belong to.
type Department string

const (
	DepartmentMCA Department = "MCA"
	DepartmentMSC Department = "MSC"
	DepartmentDS  Department = "DS"
)

// Departments lists every valid department value.
var Departments = []Department{DepartmentMCA, DepartmentMSC, DepartmentDS}

// ValidDepartment reports whether the value is a known department.
func ValidDepartment(d string) bool {
	for _, dept := range Departments {
		if string(dept) == d {
			return true
		}
	}
	return false
}

// Alumni represents a registered alumni profile.
type Alumni struct {
	ID             string     `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Email          string     `db:"email" json:"email"`
	Phone          string     `db:"phone" json:"phone"`
	GraduationYear string     `db:"graduation_year" json:"graduationYear"`
	Department     Department `db:"department" json:"department"`
	Job            string     `db:"job" json:"job"`
	SelfieKey      string     `db:"selfie_key" json:"selfieKey"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
