package entity

// SortDirection is the direction of a single sort order.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// SortOrder is one (field, direction) pair. Field is a column name that has
// already been checked against the sortable whitelist.
type SortOrder struct {
	Field     string
	Direction SortDirection
}

// EmployeeFilter describes one page of an employee listing.
type EmployeeFilter struct {
	Name   string
	Page   int
	Size   int
	Orders []SortOrder
}

func (f EmployeeFilter) Offset() int {
	return f.Page * f.Size
}

// EmployeeSortColumns maps the sortable request fields to their columns.
var EmployeeSortColumns = map[string]string{
	"id":         "id",
	"name":       "employee_name",
	"salary":     "employee_salary",
	"department": "department",
}

// EmployeePage is one page of a listing plus the paging metadata.
type EmployeePage struct {
	Employees  []Employee
	Page       int
	TotalItems int64
	TotalPages int
}
