package actor

import (
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleLecturer    = Role("LECTURER")
	RoleCoordinator = Role("COORDINATOR")
	RoleManager     = Role("MANAGER")
	RolePayroll     = Role("PAYROLL")
)

var roles = []Role{RoleLecturer, RoleCoordinator, RoleManager, RolePayroll}

func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// Acting identifies who performs a lifecycle operation and in which role.
type Acting struct {
	ID   types.ID `json:"id"`
	Role Role     `json:"role"`
}

type Profile struct {
	FirstName string `json:"firstName" sql:"type:VARCHAR(100) NOT NULL"`
	LastName  string `json:"lastName"  sql:"type:VARCHAR(100) NOT NULL"`
	Email     string `json:"email"     sql:"type:VARCHAR(256) NOT NULL" gorm:"unique_index"`
	Active    bool   `json:"active"`
}

type Lecturer struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Profile

	HourlyRate        decimal.Decimal `json:"hourlyRate"        sql:"type:DECIMAL(10,2) NOT NULL"`
	ContractStartDate types.Timestamp `json:"contractStartDate" sql:"type:DATETIME(6)"`
	ContractEndDate   types.Timestamp `json:"contractEndDate"   sql:"type:DATETIME(6)"`
}

func (Lecturer) TableName() string {
	return "lecturers"
}

type ProgrammeCoordinator struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Profile

	Department string `json:"department" sql:"type:VARCHAR(100) NOT NULL"`
}

func (ProgrammeCoordinator) TableName() string {
	return "programme_coordinators"
}

type AcademicManager struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Profile
}

func (AcademicManager) TableName() string {
	return "academic_managers"
}

func FullName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}
