package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"petcare/backend/internal/booking"
	"petcare/backend/internal/domain"
	"petcare/backend/internal/events"
	"petcare/backend/internal/store"
	"petcare/backend/internal/xid"
)

// CreateBooking stores an appointment unless it overlaps a non-cancelled
// booking for the same staff member or room. The resource rows are locked
// for the check and the insert, so two overlapping requests cannot both win.
func (s *Service) CreateBooking(ctx context.Context, req domain.BookingCreateRequest) (domain.Booking, error) {
	candidate := domain.Booking{
		ID:         xid.New("bk"),
		CustomerID: strings.TrimSpace(req.CustomerID),
		PetID:      strings.TrimSpace(req.PetID),
		ServiceID:  strings.TrimSpace(req.ServiceID),
		StaffID:    strings.TrimSpace(req.StaffID),
		RoomID:     strings.TrimSpace(req.RoomID),
		StartTime:  req.StartTime.UTC(),
		EndTime:    req.EndTime.UTC(),
		Status:     defaultString(req.Status, domain.BookingStatusConfirmed),
		CreatedAt:  s.now().UTC(),
	}
	if candidate.CustomerID == "" || candidate.PetID == "" || candidate.ServiceID == "" {
		return domain.Booking{}, invalidInput("customer, pet and service are required")
	}
	if err := validateInterval(candidate.StartTime, candidate.EndTime); err != nil {
		return domain.Booking{}, err
	}
	if !booking.ValidStatus(candidate.Status) {
		return domain.Booking{}, invalidInput("unknown booking status %q", candidate.Status)
	}

	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		services, err := tx.GetItems(ctx, []string{candidate.ServiceID})
		if err != nil {
			return err
		}
		if _, ok := services[candidate.ServiceID]; !ok {
			return fmt.Errorf("service %s: %w", candidate.ServiceID, store.ErrNotFound)
		}

		if err := tx.LockResources(ctx, []string{candidate.StaffID, candidate.RoomID}); err != nil {
			return err
		}

		if candidate.Status != domain.BookingStatusCancelled {
			existing, err := tx.ListActiveBookings(ctx, candidate.StaffID, candidate.RoomID, candidate.StartTime, candidate.EndTime)
			if err != nil {
				return err
			}
			if hit, conflict := booking.FindConflict(candidate, existing, ""); conflict {
				return &ConflictError{Booking: *hit}
			}
		}

		return tx.InsertBooking(ctx, candidate)
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.afterCommit(ctx, false, events.BookingCreated, bookingEvent(candidate))
	return candidate, nil
}

// CheckConflict reports the booking, if any, that would block the given slot.
// excludeID skips one booking so an existing appointment can be moved.
func (s *Service) CheckConflict(ctx context.Context, staffID string, roomID string, start time.Time, end time.Time, excludeID string) (*domain.Booking, error) {
	candidate := domain.Booking{
		StaffID:   strings.TrimSpace(staffID),
		RoomID:    strings.TrimSpace(roomID),
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	}
	if err := validateInterval(candidate.StartTime, candidate.EndTime); err != nil {
		return nil, err
	}

	var found *domain.Booking
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		found = nil
		existing, err := tx.ListActiveBookings(ctx, candidate.StaffID, candidate.RoomID, candidate.StartTime, candidate.EndTime)
		if err != nil {
			return err
		}
		if hit, conflict := booking.FindConflict(candidate, existing, strings.TrimSpace(excludeID)); conflict {
			found = hit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateBooking changes status and the actual start/end times. It never
// re-checks conflicts.
func (s *Service) UpdateBooking(ctx context.Context, id string, req domain.BookingUpdateRequest) (domain.Booking, error) {
	id = strings.TrimSpace(id)
	status := strings.TrimSpace(req.Status)
	if id == "" {
		return domain.Booking{}, invalidInput("booking id is required")
	}
	if status == "" && req.ActualStartTime == nil && req.ActualEndTime == nil {
		return domain.Booking{}, invalidInput("nothing to update")
	}
	if status != "" && !booking.ValidStatus(status) {
		return domain.Booking{}, invalidInput("unknown booking status %q", status)
	}
	if req.ActualStartTime != nil && req.ActualEndTime != nil && req.ActualEndTime.Before(*req.ActualStartTime) {
		return domain.Booking{}, invalidInput("actual end must not be before actual start")
	}

	var updated domain.Booking
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		b, err := tx.UpdateBooking(ctx, id, status, req.ActualStartTime, req.ActualEndTime)
		if err != nil {
			return err
		}
		updated = *b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.afterCommit(ctx, false, events.BookingUpdated, bookingEvent(updated))
	return updated, nil
}

func (s *Service) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, invalidInput("to must be after from")
	}
	return s.repo.ListBookings(ctx, filter)
}

func (s *Service) ListResources(ctx context.Context) ([]domain.Resource, error) {
	return s.repo.ListResources(ctx)
}

func (s *Service) CreateResource(ctx context.Context, req domain.Resource) (domain.Resource, error) {
	resource := domain.Resource{
		ID:   xid.New("res"),
		Name: strings.TrimSpace(req.Name),
		Type: strings.TrimSpace(req.Type),
	}
	if resource.Name == "" {
		return domain.Resource{}, invalidInput("resource name is required")
	}
	switch resource.Type {
	case domain.ResourceTypeStaff, domain.ResourceTypeRoom, domain.ResourceTypeCage:
	default:
		return domain.Resource{}, invalidInput("unknown resource type %q", resource.Type)
	}

	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateResource(ctx, resource)
	})
	if err != nil {
		return domain.Resource{}, err
	}
	return resource, nil
}

func validateInterval(start time.Time, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return invalidInput("start and end times are required")
	}
	if !end.After(start) {
		return invalidInput("end time must be after start time")
	}
	return nil
}

func bookingEvent(b domain.Booking) domain.BookingEvent {
	return domain.BookingEvent{
		BookingID: b.ID,
		StaffID:   b.StaffID,
		RoomID:    b.RoomID,
		Status:    b.Status,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}
