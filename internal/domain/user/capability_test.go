package user

import "testing"

func TestCapabilitiesCustomer(t *testing.T) {
	caps := Capabilities(RoleCustomer)

	for _, want := range []Capability{CapBookVenue, CapViewOwnBookings, CapPayBooking} {
		if !caps[want] {
			t.Errorf("customer missing %s", want)
		}
	}
	if caps[CapManageHall] {
		t.Error("customer must not manage halls")
	}
	if caps[CapApproveHalls] {
		t.Error("customer must not approve halls")
	}
}

func TestCapabilitiesOwnerVsAssistant(t *testing.T) {
	owner := Capabilities(RoleOwner)
	assistant := Capabilities(RoleAssistant)

	if !owner[CapManageStaff] {
		t.Error("owner must manage staff")
	}
	if assistant[CapManageStaff] {
		t.Error("assistant must not manage staff")
	}
	if !assistant[CapViewHallBookings] {
		t.Error("assistant must view hall bookings")
	}
	if assistant[CapCancelAnyBooking] {
		t.Error("assistant must not cancel bookings")
	}
}

func TestCapabilitiesManager(t *testing.T) {
	caps := Capabilities(RoleManager)

	if !caps[CapManageVenues] {
		t.Error("manager must manage venues")
	}
	if !caps[CapCancelAnyBooking] {
		t.Error("manager must cancel hall bookings")
	}
	if caps[CapManageStaff] {
		t.Error("manager must not manage staff")
	}
	if caps[CapUploadDocuments] {
		t.Error("manager must not upload hall documents")
	}
}

func TestCapabilitiesAdmin(t *testing.T) {
	caps := Capabilities(RoleAdmin)

	if !caps[CapApproveHalls] {
		t.Error("admin must approve halls")
	}
	if !caps[CapManageUsers] {
		t.Error("admin must manage users")
	}
	if caps[CapBookVenue] {
		t.Error("admin does not book venues")
	}
}

func TestCapabilitiesUnknownRole(t *testing.T) {
	caps := Capabilities(Role("ghost"))
	if len(caps) != 0 {
		t.Errorf("unknown role got %d capabilities, want 0", len(caps))
	}
}

func TestCan(t *testing.T) {
	if !Can(RoleCustomer, CapBookVenue) {
		t.Error("Can(customer, book_venue) = false")
	}
	if Can(RoleAssistant, CapManageVenues) {
		t.Error("Can(assistant, manage_venues) = true")
	}
}

func TestCapabilityListStableOrder(t *testing.T) {
	a := CapabilityList(RoleOwner)
	b := CapabilityList(RoleOwner)

	if len(a) == 0 {
		t.Fatal("owner capability list empty")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("capability order not stable: %v vs %v", a, b)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"customer", "owner", "manager", "assistant"} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false", role)
		}
	}
	if IsValidRole("admin") {
		t.Error("admin must not be self-registerable")
	}
	if IsValidRole("superuser") {
		t.Error("unknown role accepted")
	}
}
