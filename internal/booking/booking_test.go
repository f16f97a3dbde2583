package booking

import (
	"testing"
	"time"

	"petcare/backend/internal/domain"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", "2026-03-14T"+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func slot(id, staff, room, start, end string) domain.Booking {
	return domain.Booking{
		ID:        id,
		StaffID:   staff,
		RoomID:    room,
		StartTime: at(start),
		EndTime:   at(end),
		Status:    domain.BookingStatusConfirmed,
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]string
		want bool
	}{
		{"partial overlap", [2]string{"10:00", "10:30"}, [2]string{"10:15", "10:45"}, true},
		{"touching end", [2]string{"10:00", "10:30"}, [2]string{"10:30", "11:00"}, false},
		{"touching start", [2]string{"10:30", "11:00"}, [2]string{"10:00", "10:30"}, false},
		{"contained", [2]string{"09:00", "12:00"}, [2]string{"10:00", "10:15"}, true},
		{"identical", [2]string{"10:00", "10:30"}, [2]string{"10:00", "10:30"}, true},
		{"disjoint", [2]string{"08:00", "09:00"}, [2]string{"10:00", "11:00"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(tc.a[0]), at(tc.a[1]), at(tc.b[0]), at(tc.b[1]))
			if got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindConflictSameStaff(t *testing.T) {
	existing := []domain.Booking{slot("bk-1", "staff-b", "", "10:00", "10:30")}

	hit, ok := FindConflict(slot("", "staff-b", "", "10:15", "10:45"), existing, "")
	if !ok || hit.ID != "bk-1" {
		t.Fatalf("expected conflict with bk-1, got %v %v", hit, ok)
	}

	if _, ok := FindConflict(slot("", "staff-b", "", "10:30", "11:00"), existing, ""); ok {
		t.Fatal("back-to-back booking must not conflict")
	}
}

func TestFindConflictSameRoomDifferentStaff(t *testing.T) {
	existing := []domain.Booking{slot("bk-1", "staff-a", "room-1", "10:00", "11:00")}
	if _, ok := FindConflict(slot("", "staff-b", "room-1", "10:30", "11:30"), existing, ""); !ok {
		t.Fatal("expected room conflict")
	}
	if _, ok := FindConflict(slot("", "staff-b", "room-2", "10:30", "11:30"), existing, ""); ok {
		t.Fatal("different staff and room must not conflict")
	}
}

func TestFindConflictWithoutResourcesNeverConflicts(t *testing.T) {
	existing := []domain.Booking{
		slot("bk-1", "", "", "10:00", "11:00"),
		slot("bk-2", "staff-a", "room-1", "10:00", "11:00"),
	}
	if _, ok := FindConflict(slot("", "", "", "10:00", "11:00"), existing, ""); ok {
		t.Fatal("booking without staff or room must never conflict")
	}
}

func TestFindConflictIgnoresCancelled(t *testing.T) {
	cancelled := slot("bk-1", "staff-a", "", "10:00", "11:00")
	cancelled.Status = domain.BookingStatusCancelled
	if _, ok := FindConflict(slot("", "staff-a", "", "10:00", "11:00"), []domain.Booking{cancelled}, ""); ok {
		t.Fatal("cancelled booking must not block")
	}
}

func TestFindConflictSkipsExcluded(t *testing.T) {
	existing := []domain.Booking{slot("bk-1", "staff-a", "", "10:00", "11:00")}
	if _, ok := FindConflict(slot("bk-1", "staff-a", "", "10:30", "11:30"), existing, "bk-1"); ok {
		t.Fatal("excluded booking must not conflict with itself")
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(domain.BookingStatusNoShow) {
		t.Fatal("NoShow should be valid")
	}
	if ValidStatus("Pending") {
		t.Fatal("Pending should be rejected")
	}
}
