package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/domain/attendance"
	"github.com/codeb-platform/codeb-backend-go/internal/domain/workspace"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/keylock"
)

type ChangeRequestServiceImpl struct {
	ledger
	changeRepo attendance.ChangeRequestRepository
	memberRepo workspace.MemberRepository
	publisher  attendance.EventPublisher
	now        func() time.Time
}

// Submit implements attendance.ChangeRequestService.
func (s *ChangeRequestServiceImpl) Submit(ctx context.Context, req attendance.SubmitChangeRequest) (attendance.ChangeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ChangeRequestResponse{}, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}
	if _, err := s.memberRepo.GetMember(ctx, req.WorkspaceID, userID); err != nil {
		return attendance.ChangeRequestResponse{}, err
	}

	record, err := s.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}
	if record.WorkspaceID != req.WorkspaceID || record.UserID != userID {
		return attendance.ChangeRequestResponse{}, attendance.ErrUnauthorized
	}

	pending, err := s.changeRepo.HasPending(ctx, record.ID)
	if err != nil {
		return attendance.ChangeRequestResponse{}, fmt.Errorf("failed to check pending change requests: %w", err)
	}
	if pending {
		return attendance.ChangeRequestResponse{}, attendance.ErrChangeRequestPending
	}

	requestType := attendance.RequestType(req.RequestType)
	original := record.CheckIn
	if requestType == attendance.RequestTypeCheckOut {
		original = record.CheckOut
	}

	now := s.now().UTC()
	created, err := s.changeRepo.Create(ctx, attendance.ChangeRequest{
		ID:            newID(),
		AttendanceID:  record.ID,
		WorkspaceID:   record.WorkspaceID,
		UserID:        userID,
		RequestType:   requestType,
		RequestedTime: req.RequestedAt.UTC(),
		OriginalTime:  original,
		Reason:        req.Reason,
		Status:        attendance.ChangeRequestPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrChangeRequestPending) {
			return attendance.ChangeRequestResponse{}, err
		}
		return attendance.ChangeRequestResponse{}, fmt.Errorf("failed to create change request: %w", err)
	}

	resp := attendance.NewChangeRequestResponse(created)
	publish(ctx, s.publisher, attendance.EventChangeRequestCreated, created.WorkspaceID, userID, resp)
	return resp, nil
}

// List implements attendance.ChangeRequestService. Members only see their
// own requests; admins see the whole workspace.
func (s *ChangeRequestServiceImpl) List(ctx context.Context, req attendance.ListChangeRequestsRequest) ([]attendance.ChangeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetMember(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}

	filter := attendance.ChangeRequestFilter{WorkspaceID: req.WorkspaceID}
	if !member.IsAdmin() {
		filter.UserID = &userID
	}
	if req.Status != "" {
		status := attendance.ChangeRequestStatus(req.Status)
		filter.Status = &status
	}
	if req.AttendanceID != "" {
		filter.AttendanceID = &req.AttendanceID
	}

	requests, err := s.changeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list change requests: %w", err)
	}

	resp := make([]attendance.ChangeRequestResponse, 0, len(requests))
	for _, cr := range requests {
		resp = append(resp, attendance.NewChangeRequestResponse(cr))
	}
	return resp, nil
}

// Get implements attendance.ChangeRequestService.
func (s *ChangeRequestServiceImpl) Get(ctx context.Context, id string) (attendance.ChangeRequestResponse, error) {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}

	cr, err := s.changeRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}

	member, err := s.memberRepo.GetMember(ctx, cr.WorkspaceID, userID)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}
	if cr.UserID != userID && !member.IsAdmin() {
		return attendance.ChangeRequestResponse{}, attendance.ErrUnauthorized
	}

	return attendance.NewChangeRequestResponse(cr), nil
}

// Review implements attendance.ChangeRequestService. Approval overwrites the
// requested field(s) on the daily record; minute totals stay derived from
// sessions.
func (s *ChangeRequestServiceImpl) Review(ctx context.Context, req attendance.ReviewChangeRequest) (attendance.ChangeRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ChangeRequestResponse{}, err
	}

	reviewerID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}
	reviewer, err := s.memberRepo.GetMember(ctx, req.WorkspaceID, reviewerID)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}
	if !reviewer.IsAdmin() {
		return attendance.ChangeRequestResponse{}, workspace.ErrAdminPrivilegeRequired
	}

	cr, err := s.changeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}
	if cr.WorkspaceID != req.WorkspaceID {
		return attendance.ChangeRequestResponse{}, attendance.ErrChangeRequestNotFound
	}

	err = s.withOwnerLock(ctx, cr.UserID, cr.WorkspaceID, func(ctx context.Context) error {
		// Re-read under the lock so two reviewers cannot both apply it.
		current, err := s.changeRepo.GetByID(ctx, cr.ID)
		if err != nil {
			return err
		}
		if !current.IsPending() {
			return attendance.ErrChangeRequestAlreadyProcessed
		}
		cr = current

		now := s.now().UTC()
		if req.Action == "approve" {
			record, err := s.attendanceRepo.GetByID(ctx, cr.AttendanceID)
			if err != nil {
				return err
			}
			if err := record.ApplyCorrection(cr.RequestType, cr.RequestedTime); err != nil {
				return err
			}
			if err := s.attendanceRepo.Update(ctx, record); err != nil {
				return fmt.Errorf("failed to apply change request: %w", err)
			}
			cr.Status = attendance.ChangeRequestApproved
		} else {
			cr.Status = attendance.ChangeRequestRejected
			cr.RejectReason = &req.RejectReason
		}
		cr.ReviewedBy = &reviewerID
		cr.ReviewedAt = &now
		cr.UpdatedAt = now

		if err := s.changeRepo.UpdateReview(ctx, cr); err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.ChangeRequestResponse{}, err
	}

	resp := attendance.NewChangeRequestResponse(cr)
	publish(ctx, s.publisher, attendance.EventChangeRequestReviewed, cr.WorkspaceID, cr.UserID, resp)
	return resp, nil
}

// Cancel implements attendance.ChangeRequestService. Only the requester may
// withdraw, and only while the request is pending.
func (s *ChangeRequestServiceImpl) Cancel(ctx context.Context, id string) error {
	userID, err := jwt.UserIDFromContext(ctx)
	if err != nil {
		return err
	}

	cr, err := s.changeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cr.UserID != userID {
		return attendance.ErrUnauthorized
	}
	if !cr.IsPending() {
		return attendance.ErrChangeRequestAlreadyProcessed
	}

	if err := s.changeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete change request: %w", err)
	}
	return nil
}

func NewChangeRequestService(
	transactor database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	sessionRepo attendance.WorkSessionRepository,
	changeRepo attendance.ChangeRequestRepository,
	memberRepo workspace.MemberRepository,
	publisher attendance.EventPublisher,
	locks *keylock.KeyLock,
) attendance.ChangeRequestService {
	return &ChangeRequestServiceImpl{
		ledger: ledger{
			transactor:     transactor,
			attendanceRepo: attendanceRepo,
			sessionRepo:    sessionRepo,
			locks:          locks,
		},
		changeRepo: changeRepo,
		memberRepo: memberRepo,
		publisher:  publisher,
		now:        time.Now,
	}
}
