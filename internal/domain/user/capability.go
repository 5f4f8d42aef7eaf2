package user

// Capability names a single action a role is allowed to perform.
// The client uses the set to decide which navigation and actions to show,
// the server uses it for coarse authorization checks.
type Capability string

const (
	CapBookVenue        Capability = "book_venue"
	CapViewOwnBookings  Capability = "view_own_bookings"
	CapPayBooking       Capability = "pay_booking"
	CapManageHall       Capability = "manage_hall"
	CapManageVenues     Capability = "manage_venues"
	CapManageStaff      Capability = "manage_staff"
	CapViewHallBookings Capability = "view_hall_bookings"
	CapCancelAnyBooking Capability = "cancel_any_booking"
	CapUploadDocuments  Capability = "upload_documents"
	CapApproveHalls     Capability = "approve_halls"
	CapManageUsers      Capability = "manage_users"
)

// Capabilities maps a role to the set of actions it may perform.
// Unknown roles get an empty set.
func Capabilities(role Role) map[Capability]bool {
	switch role {
	case RoleCustomer:
		return set(CapBookVenue, CapViewOwnBookings, CapPayBooking)
	case RoleOwner:
		return set(
			CapManageHall, CapManageVenues, CapManageStaff,
			CapViewHallBookings, CapCancelAnyBooking, CapUploadDocuments,
		)
	case RoleManager:
		return set(
			CapManageVenues, CapViewHallBookings, CapCancelAnyBooking,
		)
	case RoleAssistant:
		return set(CapViewHallBookings)
	case RoleAdmin:
		return set(
			CapApproveHalls, CapManageUsers, CapViewHallBookings,
			CapCancelAnyBooking,
		)
	default:
		return map[Capability]bool{}
	}
}

// Can reports whether the role holds the capability.
func Can(role Role, c Capability) bool {
	return Capabilities(role)[c]
}

// CapabilityList returns the role's capabilities as a stable-order slice
// suitable for JSON responses.
func CapabilityList(role Role) []Capability {
	all := []Capability{
		CapBookVenue, CapViewOwnBookings, CapPayBooking,
		CapManageHall, CapManageVenues, CapManageStaff,
		CapViewHallBookings, CapCancelAnyBooking, CapUploadDocuments,
		CapApproveHalls, CapManageUsers,
	}
	caps := Capabilities(role)
	out := make([]Capability, 0, len(caps))
	for _, c := range all {
		if caps[c] {
			out = append(out, c)
		}
	}
	return out
}

func set(caps ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return m
}
