package dto

// FilterAll is the sentinel that disables a facet predicate.
const FilterAll = "All"

// RosterFilter captures the dashboard filter inputs. Zero values and the
// "All" sentinel both neutralise their predicate.
type RosterFilter struct {
	Search     string `form:"search"`
	Department string `form:"department"`
	Year       string `form:"year"`
}

// AlumniRow is a roster entry shaped for the dashboard list.
type AlumniRow struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	GraduationYear string `json:"graduationYear"`
	Department     string `json:"department"`
	Job            string `json:"job"`
	SelfieURL      string `json:"selfieUrl"`
	SubmittedAt    string `json:"submittedAt"`
}

// FacetOptions lists the distinct filter choices derived from the roster.
type FacetOptions struct {
	Departments []string `json:"departments"`
	Years       []string `json:"years"`
}

// RosterStats summarises the roster for the dashboard stat cards.
type RosterStats struct {
	TotalAlumni   int            `json:"total_alumni"`
	ByDepartment  map[string]int `json:"by_department"`
	ByYear        map[string]int `json:"by_year"`
	FilteredCount int            `json:"filtered_count"`
}
