package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var (
	ErrAdminNotAuthorized    = fmt.Errorf("performing user is not authorized as an admin")
	ErrFarmerAlreadyInactive = fmt.Errorf("farmer is already inactive")
	ErrEmptyCropName         = fmt.Errorf("crop name must not be empty")
	ErrUnknownWindowDetail   = fmt.Errorf("unknown window detail")
)

// Window details an admin can set after creation. ClearDetail empties one.
const (
	DetailNotes     = "notes"
	DetailSource    = "source"
	DetailZone      = "zone"
	DetailVarieties = "varieties"

	ClearDetail = "-"
)

// NewWindowInput is the admin's raw input for a sowing window. Months may be
// names in any supported locale or numbers 1-12.
type NewWindowInput struct {
	Crop   string
	Start  string
	End    string
	Season string
	Region string
}

// StatusBoard groups windows by their status for one reference month.
type StatusBoard struct {
	ReferenceMonth sowing.Month
	Entries        map[sowing.State][]CalendarEntry
}

type AdminService struct {
	windowRepo      sowing.Repository
	farmerRepo      farmer.Repository
	adminTelegramID int64
	logger          *logrus.Entry
}

func NewAdminService(wr sowing.Repository, fr farmer.Repository, adminID int64, logger *logrus.Entry) *AdminService {
	return &AdminService{
		windowRepo:      wr,
		farmerRepo:      fr,
		adminTelegramID: adminID,
		logger:          logger,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

func optionalString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

// AddWindow stores a new sowing window and returns it with its timeline so the
// admin can check the shape before farmers see it.
func (s *AdminService) AddWindow(ctx context.Context, performingAdminID int64, in NewWindowInput) (*sowing.Window, sowing.Timeline, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, nil, err
	}
	crop := strings.TrimSpace(in.Crop)
	if crop == "" {
		return nil, nil, ErrEmptyCropName
	}
	start, err := sowing.ParseMonth(in.Start)
	if err != nil {
		return nil, nil, fmt.Errorf("start month: %w", err)
	}
	end, err := sowing.ParseMonth(in.End)
	if err != nil {
		return nil, nil, fmt.Errorf("end month: %w", err)
	}

	w := &sowing.Window{
		CropName:   crop,
		StartMonth: start,
		EndMonth:   end,
		Season:     optionalString(in.Season),
		Region:     optionalString(in.Region),
	}
	tl, err := sowing.ClassifyTimeline(*w)
	if err != nil {
		return nil, nil, err
	}
	if err := s.windowRepo.Create(ctx, w); err != nil {
		if errors.Is(err, idb.ErrDuplicateWindow) {
			return nil, nil, idb.ErrDuplicateWindow
		}
		return nil, nil, fmt.Errorf("failed to create sowing window: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"window_id": w.ID, "crop": w.CropName, "start": start, "end": end}).Info("Sowing window added")
	return w, tl, nil
}

// SetWindowMonths changes the span of an existing window.
func (s *AdminService) SetWindowMonths(ctx context.Context, performingAdminID, windowID int64, startName, endName string) (*sowing.Window, sowing.Timeline, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, nil, err
	}
	start, err := sowing.ParseMonth(startName)
	if err != nil {
		return nil, nil, fmt.Errorf("start month: %w", err)
	}
	end, err := sowing.ParseMonth(endName)
	if err != nil {
		return nil, nil, fmt.Errorf("end month: %w", err)
	}

	w, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		return nil, nil, err
	}
	w.StartMonth, w.EndMonth = start, end
	tl, err := sowing.ClassifyTimeline(*w)
	if err != nil {
		return nil, nil, err
	}
	if err := s.windowRepo.Update(ctx, w); err != nil {
		return nil, nil, err
	}
	return w, tl, nil
}

// SetWindowDetail sets the notes, source, agro-climatic zone or the
// comma-separated variety list of a window.
func (s *AdminService) SetWindowDetail(ctx context.Context, performingAdminID, windowID int64, detail, value string) (*sowing.Window, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if value == ClearDetail {
		value = ""
	}

	w, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(detail) {
	case DetailNotes:
		w.Notes = optionalString(value)
	case DetailSource:
		w.Source = optionalString(value)
	case DetailZone:
		w.AgroZone = optionalString(value)
	case DetailVarieties:
		w.Varieties = splitVarieties(value)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindowDetail, detail)
	}

	if err := s.windowRepo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update sowing window details: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"window_id": w.ID, "detail": detail}).Info("Sowing window detail updated")
	return w, nil
}

func splitVarieties(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *AdminService) RemoveWindow(ctx context.Context, performingAdminID, windowID int64) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	return s.windowRepo.Delete(ctx, windowID)
}

func (s *AdminService) ListWindows(ctx context.Context, performingAdminID int64) ([]*sowing.Window, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.windowRepo.ListAll(ctx)
}

// StatusBoard classifies every stored window against ref and groups the
// results by state, for the trends overview.
func (s *AdminService) StatusBoard(ctx context.Context, performingAdminID int64, ref sowing.Month) (*StatusBoard, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: reference=%d", sowing.ErrInvalidMonthIndex, int(ref))
	}
	windows, err := s.windowRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sowing windows: %w", err)
	}

	board := &StatusBoard{ReferenceMonth: ref, Entries: make(map[sowing.State][]CalendarEntry)}
	for _, w := range windows {
		entry, err := classifyEntry(w, ref)
		if err != nil {
			s.logger.WithError(err).WithField("window_id", w.ID).Warn("Skipping sowing window with invalid months")
			continue
		}
		board.Entries[entry.Status.State] = append(board.Entries[entry.Status.State], entry)
	}
	return board, nil
}

// DeactivateFarmer stops reminders and lookups for a farmer.
func (s *AdminService) DeactivateFarmer(ctx context.Context, performingAdminID, farmerTelegramID int64) (*farmer.Farmer, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}

	target, err := s.farmerRepo.GetByTelegramID(ctx, farmerTelegramID)
	if err != nil {
		if errors.Is(err, idb.ErrFarmerNotFound) {
			return nil, idb.ErrFarmerNotFound
		}
		return nil, fmt.Errorf("failed to get farmer by Telegram ID for deactivation: %w", err)
	}
	if !target.IsActive {
		return target, ErrFarmerAlreadyInactive
	}

	target.IsActive = false
	if err := s.farmerRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update farmer to inactive in repository: %w", err)
	}
	return target, nil
}

// ActivateFarmer re-enables a deactivated farmer.
func (s *AdminService) ActivateFarmer(ctx context.Context, performingAdminID, farmerTelegramID int64) (*farmer.Farmer, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	target, err := s.farmerRepo.GetByTelegramID(ctx, farmerTelegramID)
	if err != nil {
		if errors.Is(err, idb.ErrFarmerNotFound) {
			return nil, idb.ErrFarmerNotFound
		}
		return nil, fmt.Errorf("failed to get farmer by Telegram ID for activation: %w", err)
	}
	if target.IsActive {
		return target, nil
	}
	target.IsActive = true
	if err := s.farmerRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to reactivate farmer: %w", err)
	}
	return target, nil
}

func (s *AdminService) ListActiveFarmers(ctx context.Context, performingAdminID int64) ([]*farmer.Farmer, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.farmerRepo.ListActive(ctx)
}

func (s *AdminService) ListAllFarmers(ctx context.Context, performingAdminID int64) ([]*farmer.Farmer, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.farmerRepo.ListAll(ctx)
}
