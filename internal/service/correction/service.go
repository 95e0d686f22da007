package correction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/audit"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
)

// CorrectionServiceImpl is the privileged write path around the ledger. It
// bypasses the clock-event rules but keeps two invariants: the record stays
// structurally valid, and every mutation commits together with exactly one
// audit entry.
type CorrectionServiceImpl struct {
	txm database.TxManager
	attendance.AttendanceRepository
	attendance.BreakRepository
	audit.AuditRepository
	userRepo user.UserRepository
	loc      *time.Location
}

func NewCorrectionService(
	txm database.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	breakRepo attendance.BreakRepository,
	auditRepo audit.AuditRepository,
	userRepo user.UserRepository,
	loc *time.Location,
) audit.CorrectionService {
	return &CorrectionServiceImpl{
		txm:                  txm,
		AttendanceRepository: attendanceRepo,
		BreakRepository:      breakRepo,
		AuditRepository:      auditRepo,
		userRepo:             userRepo,
		loc:                  loc,
	}
}

// Correct implements audit.CorrectionService.
func (c *CorrectionServiceImpl) Correct(ctx context.Context, req audit.CorrectRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	var result attendance.Record
	err := c.txm.WithinTx(ctx, func(ctx context.Context) error {
		rec, oldValue, err := c.selectTarget(ctx, req)
		if err != nil {
			return err
		}

		if err := c.applyChanges(&rec, req.Changes); err != nil {
			return err
		}

		if rec.ID == "" {
			created, err := c.AttendanceRepository.Create(ctx, rec)
			if err != nil {
				return err
			}
			rec = created
		} else {
			if err := c.AttendanceRepository.Update(ctx, rec); err != nil {
				return err
			}
		}

		// The audit entry rides the same transaction as the mutation: if it
		// cannot be written, the correction rolls back with it.
		_, err = c.AuditRepository.Create(ctx, audit.Entry{
			AdminID:    req.AdminID,
			ActionType: audit.ActionAttendanceCorrection,
			TargetType: audit.TargetAttendance,
			TargetID:   rec.ID,
			OldValue:   oldValue,
			NewValue:   audit.SnapshotOf(rec).JSON(),
			Reason:     req.Reason,
			IPAddress:  req.IPAddress,
		})
		if err != nil {
			return err
		}

		result = rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return attendance.NewRecordResponse(result, result.StateWith(false)), nil
}

// selectTarget resolves the correction target: an existing locked record, or
// a fresh synthetic one for a (user, date) pair with no record yet. The
// returned oldValue is nil for synthetic creation.
func (c *CorrectionServiceImpl) selectTarget(ctx context.Context, req audit.CorrectRequest) (attendance.Record, []byte, error) {
	if req.RecordID != nil && *req.RecordID != "" {
		rec, err := c.AttendanceRepository.GetByIDForUpdate(ctx, *req.RecordID)
		if err != nil {
			return attendance.Record{}, nil, err
		}
		return rec, audit.SnapshotOf(rec).JSON(), nil
	}

	existing, err := c.AttendanceRepository.GetByUserAndDateForUpdate(ctx, *req.UserID, *req.Date)
	if err != nil {
		return attendance.Record{}, nil, err
	}
	if existing != nil {
		return *existing, audit.SnapshotOf(*existing).JSON(), nil
	}

	// Synthetic creation: the target user must exist before a record is
	// fabricated for them.
	if _, err := c.userRepo.GetByID(ctx, *req.UserID); err != nil {
		return attendance.Record{}, nil, err
	}

	date, _ := time.ParseInLocation("2006-01-02", *req.Date, c.loc)
	return attendance.Record{
		UserID: *req.UserID,
		Date:   date,
		Status: attendance.StatusNormal,
	}, nil, nil
}

// applyChanges mutates the record in place. Clock strings land on the
// record's date; an empty string clears the field back to null.
func (c *CorrectionServiceImpl) applyChanges(rec *attendance.Record, changes audit.Changes) error {
	set := func(target **time.Time, v *string) error {
		if v == nil {
			return nil
		}
		if *v == "" {
			*target = nil
			return nil
		}
		m, err := attendance.ParseMinutes(*v)
		if err != nil {
			return attendance.ErrInvalidClockTime
		}
		t := m.At(rec.Date, c.loc)
		*target = &t
		return nil
	}

	if err := set(&rec.ClockIn, changes.ClockIn); err != nil {
		return err
	}
	if err := set(&rec.ClockOut, changes.ClockOut); err != nil {
		return err
	}
	if err := set(&rec.BreakStart, changes.BreakStart); err != nil {
		return err
	}
	if err := set(&rec.BreakEnd, changes.BreakEnd); err != nil {
		return err
	}

	if changes.Status != nil {
		rec.Status = attendance.Status(*changes.Status)
	}

	return nil
}

// Delete implements audit.CorrectionService. Break rows go with the record;
// linked daily reports and comments do not, and are reported as warnings.
func (c *CorrectionServiceImpl) Delete(ctx context.Context, req audit.DeleteRequest) (audit.DeleteResult, error) {
	if err := req.Validate(); err != nil {
		return audit.DeleteResult{}, err
	}

	warnings := []string{}
	err := c.txm.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := c.AttendanceRepository.GetByIDForUpdate(ctx, req.RecordID)
		if err != nil {
			return err
		}

		reports, comments, err := c.AttendanceRepository.LinkedReportCounts(ctx, rec.ID)
		if err != nil {
			return err
		}
		if reports > 0 {
			warnings = append(warnings, fmt.Sprintf("%d daily report(s) still reference the deleted record", reports))
		}
		if comments > 0 {
			warnings = append(warnings, fmt.Sprintf("%d staff comment(s) still reference the deleted record", comments))
		}

		if err := c.BreakRepository.DeleteByAttendance(ctx, rec.ID); err != nil {
			return err
		}
		if err := c.AttendanceRepository.Delete(ctx, rec.ID); err != nil {
			return err
		}

		_, err = c.AuditRepository.Create(ctx, audit.Entry{
			AdminID:    req.AdminID,
			ActionType: audit.ActionAttendanceDeletion,
			TargetType: audit.TargetAttendance,
			TargetID:   rec.ID,
			OldValue:   audit.SnapshotOf(rec).JSON(),
			NewValue:   nil,
			Reason:     req.Reason,
			IPAddress:  req.IPAddress,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return audit.DeleteResult{}, attendance.ErrRecordNotFound
		}
		return audit.DeleteResult{}, err
	}

	return audit.DeleteResult{Warnings: warnings}, nil
}

// ListEntries implements audit.CorrectionService.
func (c *CorrectionServiceImpl) ListEntries(ctx context.Context, filter audit.ListFilter) (audit.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return audit.ListResponse{}, err
	}

	entries, total, err := c.AuditRepository.List(ctx, filter)
	if err != nil {
		return audit.ListResponse{}, fmt.Errorf("failed to list audit entries: %w", err)
	}

	responses := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, audit.NewEntryResponse(e))
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}

	return audit.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Entries:    responses,
	}, nil
}
