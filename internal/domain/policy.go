package domain

type Action string

const (
	ActReservationCreate      Action = "reservation:create"
	ActReservationBookForUser Action = "reservation:book-for-user"
	ActReservationRead        Action = "reservation:read"
	ActReservationListAll     Action = "reservation:list-all"
	ActReservationConfirm     Action = "reservation:confirm"
	ActReservationCancel      Action = "reservation:cancel"
	ActReservationEdit        Action = "reservation:edit"
	ActReservationDelete      Action = "reservation:delete"
	ActTableRead              Action = "table:read"
	ActTableWrite             Action = "table:write"
	ActCatalogWrite           Action = "catalog:write"
	ActUserList               Action = "user:list"
	ActUserUpdate             Action = "user:update"
	ActUserChangeRole         Action = "user:change-role"
)

// Owned is a resource with an owning user.
type Owned interface {
	OwnerID() string
}

// Can decides whether actor may perform act on res. res may be nil for
// actions that do not target a single resource.
func Can(actor Actor, act Action, res Owned) bool {
	if !actor.Authenticated() {
		return false
	}
	owner := res != nil && res.OwnerID() == actor.ID

	switch act {
	case ActReservationCreate, ActTableRead:
		return true
	case ActReservationRead, ActReservationCancel:
		return owner || actor.Role.IsStaff()
	case ActUserUpdate:
		return owner || actor.Role == RoleAdmin
	case ActReservationBookForUser, ActReservationListAll, ActReservationConfirm, ActReservationEdit:
		return actor.Role.IsStaff()
	case ActReservationDelete, ActTableWrite, ActCatalogWrite, ActUserList, ActUserChangeRole:
		return actor.Role == RoleAdmin
	}
	return false
}
