package models

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
	RoleViewer  Role = "Viewer"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleUser, RoleViewer}

type Category string

const (
	CategoryStationery      Category = "Stationery"
	CategoryCleaning        Category = "Cleaning"
	CategoryOfficeEquipment Category = "Office Equipment"
	CategoryKitchen         Category = "Kitchen"
	CategoryTechnical       Category = "Technical"
	CategoryOther           Category = "Other"
)

var Categories = []Category{
	CategoryStationery, CategoryCleaning, CategoryOfficeEquipment,
	CategoryKitchen, CategoryTechnical, CategoryOther,
}

type Unit string

const (
	UnitPiece   Unit = "Piece"
	UnitPackage Unit = "Package"
	UnitBox     Unit = "Box"
	UnitLitre   Unit = "Litre"
	UnitKg      Unit = "Kg"
	UnitCarton  Unit = "Carton"
	UnitMetre   Unit = "Metre"
)

var Units = []Unit{UnitPiece, UnitPackage, UnitBox, UnitLitre, UnitKg, UnitCarton, UnitMetre}

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

var MovementTypes = []MovementType{MovementIn, MovementOut}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// Rank orders priorities from most to least pressing.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "Pending"
	RequestApproved  RequestStatus = "Approved"
	RequestRejected  RequestStatus = "Rejected"
	RequestCompleted RequestStatus = "Completed"
)

var RequestStatuses = []RequestStatus{RequestPending, RequestApproved, RequestRejected, RequestCompleted}

type NotificationType string

const (
	NotifyCriticalStock   NotificationType = "Critical Stock"
	NotifyRequestApproved NotificationType = "Request Approved"
	NotifyRequestRejected NotificationType = "Request Rejected"
	NotifyOrderUpdate     NotificationType = "Order Update"
	NotifyBudgetWarning   NotificationType = "Budget Warning"
	NotifySystem          NotificationType = "System"
)

var NotificationTypes = []NotificationType{
	NotifyCriticalStock, NotifyRequestApproved, NotifyRequestRejected,
	NotifyOrderUpdate, NotifyBudgetWarning, NotifySystem,
}

type StockStatus string

const (
	StockCritical StockStatus = "Critical"
	StockExcess   StockStatus = "Excess"
	StockNormal   StockStatus = "Normal"
)

type CountStatus string

const (
	CountPlanned   CountStatus = "Planned"
	CountCompleted CountStatus = "Completed"
)

func validIn[T comparable](v T, set []T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool             { return validIn(r, Roles) }
func (c Category) Valid() bool         { return validIn(c, Categories) }
func (u Unit) Valid() bool             { return validIn(u, Units) }
func (t MovementType) Valid() bool     { return validIn(t, MovementTypes) }
func (p Priority) Valid() bool         { return validIn(p, Priorities) }
func (s RequestStatus) Valid() bool    { return validIn(s, RequestStatuses) }
func (t NotificationType) Valid() bool { return validIn(t, NotificationTypes) }
