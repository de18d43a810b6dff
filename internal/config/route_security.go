package config

import "library-circulation/internal/domain"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// RouteRule is the protection applied to one named HTTP route.
type RouteRule struct {
	Level      SecurityLevel
	Permission domain.Permission // empty: any authenticated user
}

// RouteSecurityConfig maps route names to their protection. Routes missing
// from the map are refused.
var RouteSecurityConfig = map[string]RouteRule{
	"Health": {Level: SecurityPublic},

	// Loans
	"IssueLoan":     {Level: SecurityAccess, Permission: domain.PermissionBorrow},
	"GetLoan":       {Level: SecurityAccess},
	"ReturnLoan":    {Level: SecurityAccess, Permission: domain.PermissionBorrow},
	"RenewLoan":     {Level: SecurityAccess, Permission: domain.PermissionRenew},
	"ListUserLoans": {Level: SecurityAccess},
	"ListOverdue":   {Level: SecurityAccess, Permission: domain.PermissionViewReports},

	// Reservations
	"RequestReservation":  {Level: SecurityAccess, Permission: domain.PermissionReserve},
	"GetReservation":      {Level: SecurityAccess},
	"ConfirmReservation":  {Level: SecurityAccess, Permission: domain.PermissionReserve},
	"CancelReservation":   {Level: SecurityAccess, Permission: domain.PermissionReserve},
	"CompleteReservation": {Level: SecurityAccess, Permission: domain.PermissionReserve},
	"QueuePosition":       {Level: SecurityAccess, Permission: domain.PermissionViewCatalog},
	"SweepExpired":        {Level: SecurityAccess, Permission: domain.PermissionManageCatalog},

	// Fines
	"GetFine":          {Level: SecurityAccess},
	"PayFine":          {Level: SecurityAccess},
	"DiscountFine":     {Level: SecurityAccess, Permission: domain.PermissionManageUsers},
	"SurchargeFine":    {Level: SecurityAccess, Permission: domain.PermissionManageUsers},
	"FineReceipt":      {Level: SecurityAccess},
	"ListUnpaidFines":  {Level: SecurityAccess, Permission: domain.PermissionViewReports},
	"ListOverdueFines": {Level: SecurityAccess, Permission: domain.PermissionViewReports},

	// Catalog
	"RegisterUser":    {Level: SecurityAccess, Permission: domain.PermissionManageUsers},
	"GetUser":         {Level: SecurityAccess},
	"SetUserActive":   {Level: SecurityAccess, Permission: domain.PermissionManageUsers},
	"AddResource":     {Level: SecurityAccess, Permission: domain.PermissionManageCatalog},
	"GetResource":     {Level: SecurityAccess, Permission: domain.PermissionViewCatalog},
	"UpdateCondition": {Level: SecurityAccess, Permission: domain.PermissionManageCatalog},

	// Notifications
	"ListNotifications": {Level: SecurityAccess},
	"MarkRead":          {Level: SecurityAccess},
}
