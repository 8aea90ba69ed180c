package service

import (
	"context"
	"fmt"
)

// MaxUnenrollBatch caps the number of device ids per request.
const MaxUnenrollBatch = 50

// UnenrollDevicesInput carries the parameters of a batch unenroll action.
type UnenrollDevicesInput struct {
	TicketID  string
	FamilyID  string
	DeviceIDs []string
	Reason    string
}

// UnenrollDevicesResult reports per-device outcomes. Skipped covers
// missing, duplicate and already-unenrolled ids; UnenrolledCount +
// SkippedCount always equals the requested count.
type UnenrollDevicesResult struct {
	UnenrolledCount int
	SkippedCount    int
	Message         string
}

// UnenrollDevices remotely unenrolls the given devices in one atomic
// batch. Unenrollment is monotonic; individual missing or duplicate ids
// are counted as skipped, never errors. Stealth action: no family-visible
// trail is written.
func (s *EscapeService) UnenrollDevices(ctx context.Context, actor Actor, input UnenrollDevicesInput) (*UnenrollDevicesResult, error) {
	if len(input.DeviceIDs) == 0 {
		return nil, invalidArgument("At least one device id is required")
	}
	if len(input.DeviceIDs) > MaxUnenrollBatch {
		return nil, invalidArgument(fmt.Sprintf("At most %d device ids per request", MaxUnenrollBatch))
	}

	if _, err := s.loadGatedTicket(input.TicketID); err != nil {
		return nil, err
	}

	family, err := s.families.GetByID(input.FamilyID)
	if err != nil {
		return nil, internalError(err)
	}
	if family == nil {
		return nil, notFound("Family not found")
	}

	unenrolled, skipped, err := s.devices.UnenrollBatch(input.FamilyID, input.DeviceIDs)
	if err != nil {
		return nil, internalError(err)
	}

	s.recordAudit(actor, newUnenrollAudit(input.TicketID, input.FamilyID, actor, input.Reason, len(input.DeviceIDs), unenrolled, skipped))

	if unenrolled > 0 {
		s.annotate(input.TicketID, actor, ActionUnenrollDevices,
			fmt.Sprintf("Unenrolled %d device(s) from family %s (%d skipped)", unenrolled, input.FamilyID, skipped),
			fmt.Sprintf("Unenrolled %d of %d requested device(s) from family %s. Reason: %s", unenrolled, len(input.DeviceIDs), input.FamilyID, input.Reason))
	}

	message := fmt.Sprintf("Unenrolled %d device(s), skipped %d", unenrolled, skipped)
	return &UnenrollDevicesResult{UnenrolledCount: unenrolled, SkippedCount: skipped, Message: message}, nil
}
