package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Permission names an action a user role may perform.
type Permission string

const (
	PermissionBorrow               Permission = "BORROW"
	PermissionRenew                Permission = "RENEW"
	PermissionReserve              Permission = "RESERVE"
	PermissionViewCatalog          Permission = "VIEW_CATALOG"
	PermissionSearch               Permission = "SEARCH"
	PermissionSpecializedAccess    Permission = "SPECIALIZED_ACCESS"
	PermissionRequestAcquisition   Permission = "REQUEST_ACQUISITION"
	PermissionGenerateBibliography Permission = "GENERATE_BIBLIOGRAPHY"
	PermissionViewReports          Permission = "VIEW_REPORTS"
	PermissionManageUsers          Permission = "MANAGE_USERS"
	PermissionManageCatalog        Permission = "MANAGE_CATALOG"
)

// UnboundedLoans is the loan limit of roles without a cap.
const UnboundedLoans = math.MaxInt

// Queue and fine constants shared by the loan and reservation paths.
const (
	DefaultMaxRenewals   = 2
	DefaultDownloadLimit = 100
	QueueCapacity        = 10
	PaymentGraceDays     = 30
)

const (
	physicalLoanDays     = 7
	digitalLoanDays      = 14
	audioLoanDays        = 21
	studentLoanLimit     = 3
	studentLoanDays      = 7
	facultyLoanLimit     = 10
	coordinatorLoanLimit = 15
	facultyLoanDays      = 15
	librarianLoanDays    = 30
)

var (
	physicalFineRate      = decimal.NewFromInt(1)
	physicalDamageSurplus = decimal.NewFromInt(5)
)

var basePermissions = []Permission{
	PermissionBorrow,
	PermissionRenew,
	PermissionReserve,
	PermissionViewCatalog,
	PermissionSearch,
}

var facultyPermissions = []Permission{
	PermissionSpecializedAccess,
	PermissionRequestAcquisition,
	PermissionGenerateBibliography,
	PermissionViewReports,
}

// UserPolicy holds the role-derived borrowing parameters of a user.
type UserPolicy struct {
	LoanLimit   int
	LoanDays    int
	Priority    int
	Permissions []Permission

	// AllPermissions grants every permission, including ones not listed.
	AllPermissions bool
}

// HasPermission reports whether the policy grants perm.
func (p UserPolicy) HasPermission(perm Permission) bool {
	if p.AllPermissions {
		return true
	}
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

// ResourcePolicy holds the type-derived circulation parameters of a resource.
type ResourcePolicy struct {
	LoanDays        int
	FineRatePerDay  decimal.Decimal
	DamageSurcharge decimal.Decimal
	Renewable       bool
	Reservable      bool
}

// PolicyForUser resolves the borrowing parameters for a user's role.
func PolicyForUser(u *User) UserPolicy {
	switch u.Role {
	case UserRoleFaculty:
		perms := append(append([]Permission{}, basePermissions...), facultyPermissions...)
		if u.Coordinator {
			perms = append(perms, PermissionManageUsers, PermissionManageCatalog)
			return UserPolicy{LoanLimit: coordinatorLoanLimit, LoanDays: facultyLoanDays, Priority: 3, Permissions: perms}
		}
		return UserPolicy{LoanLimit: facultyLoanLimit, LoanDays: facultyLoanDays, Priority: 2, Permissions: perms}
	case UserRoleLibrarian:
		return UserPolicy{LoanLimit: UnboundedLoans, LoanDays: librarianLoanDays, Priority: 0, AllPermissions: true}
	default:
		return UserPolicy{
			LoanLimit:   studentLoanLimit,
			LoanDays:    studentLoanDays,
			Priority:    1,
			Permissions: append([]Permission{}, basePermissions...),
		}
	}
}

// PolicyForResource resolves the circulation parameters for a resource.
// Renewability of a physical copy depends on its live queue and condition.
func PolicyForResource(r *Resource) ResourcePolicy {
	switch r.Type {
	case ResourceTypeDigital:
		return ResourcePolicy{
			LoanDays:        digitalLoanDays,
			FineRatePerDay:  decimal.Zero,
			DamageSurcharge: decimal.Zero,
			Renewable:       true,
		}
	case ResourceTypeAudio:
		return ResourcePolicy{
			LoanDays:        audioLoanDays,
			FineRatePerDay:  decimal.Zero,
			DamageSurcharge: decimal.Zero,
			Renewable:       true,
		}
	default:
		surcharge := decimal.Zero
		if r.Condition == ConditionDamaged {
			surcharge = physicalDamageSurplus
		}
		return ResourcePolicy{
			LoanDays:        physicalLoanDays,
			FineRatePerDay:  physicalFineRate,
			DamageSurcharge: surcharge,
			Renewable:       r.QueueLen() == 0 && r.Condition != ConditionDamaged,
			Reservable:      true,
		}
	}
}

// CalculateFine returns the fine owed for returning r daysLate days late.
// Zero or negative lateness owes nothing.
func CalculateFine(r *Resource, daysLate int) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	p := PolicyForResource(r)
	if p.FineRatePerDay.IsZero() {
		return decimal.Zero
	}
	return p.FineRatePerDay.Mul(decimal.NewFromInt(int64(daysLate))).Add(p.DamageSurcharge)
}

// LoanDuration is the number of days a loan of r by u runs.
func LoanDuration(u *User, r *Resource) int {
	userDays := PolicyForUser(u).LoanDays
	resourceDays := PolicyForResource(r).LoanDays
	if userDays < resourceDays {
		return userDays
	}
	return resourceDays
}
