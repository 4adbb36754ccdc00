package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"roombooking/internal/access"
	"roombooking/internal/domain"
	"roombooking/internal/pkg/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Authorizer interface {
	Authorize(op access.Operation, caller access.Caller, res access.Resource) error
}

type Service struct {
	repo  *Repository
	authz Authorizer
	log   logrus.FieldLogger
}

func NewService(repo *Repository, authz Authorizer, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repo: repo, authz: authz, log: log.WithField("module", "room")}
}

func (s *Service) ListActive(ctx context.Context, f Filter) ([]domain.Room, int64, error) {
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListActive(ctx, f)
}

// Get hides retired rooms from the public catalog.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, domain.NotFound("room", id)
	}
	return room, nil
}

func (s *Service) Create(ctx context.Context, caller access.Caller, req CreateRoomRequest) (*domain.Room, error) {
	if err := s.authz.Authorize(access.RoomManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	amenities, err := amenitiesJSON(req.Amenities)
	if err != nil {
		return nil, err
	}

	room := &domain.Room{
		RoomNumber:  req.RoomNumber,
		Name:        req.Name,
		Description: req.Description,
		RoomType:    req.RoomType,
		Capacity:    req.Capacity,
		FloorNumber: req.FloorNumber,
		AreaSqm:     req.AreaSqm,
		DailyRate:   domain.RoundMoney(req.DailyRate),
		MonthlyRate: domain.RoundMoney(req.MonthlyRate),
		Status:      domain.RoomAvailable,
		Amenities:   amenities,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("room number %q: %w", room.RoomNumber, domain.ErrDuplicate)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"room_id": room.ID, "room_number": room.RoomNumber}).Info("room created")
	return room, nil
}

func (s *Service) Update(ctx context.Context, caller access.Caller, id int64, req UpdateRoomRequest) (*domain.Room, error) {
	if err := s.authz.Authorize(access.RoomManage, caller, access.Resource{}); err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.RoomType != nil {
		changes["room_type"] = *req.RoomType
	}
	if req.Capacity != nil {
		changes["capacity"] = *req.Capacity
	}
	if req.FloorNumber != nil {
		changes["floor_number"] = *req.FloorNumber
	}
	if req.AreaSqm != nil {
		changes["area_sqm"] = *req.AreaSqm
	}
	if req.DailyRate != nil {
		changes["daily_rate"] = domain.RoundMoney(*req.DailyRate)
	}
	if req.MonthlyRate != nil {
		changes["monthly_rate"] = domain.RoundMoney(*req.MonthlyRate)
	}
	if req.ImageURL != nil {
		changes["image_url"] = *req.ImageURL
	}
	if req.Amenities != nil {
		amenities, err := amenitiesJSON(*req.Amenities)
		if err != nil {
			return nil, err
		}
		changes["amenities"] = amenities
	}

	return s.repo.Update(ctx, id, func(current *domain.Room) (map[string]any, error) {
		// статус сверяем с заблокированной строкой
		if req.Status != nil && *req.Status != current.Status {
			if err := checkManualStatus(current.Status, *req.Status); err != nil {
				return nil, err
			}
			changes["status"] = *req.Status
		}
		changes["updated_at"] = time.Now().UTC()
		return changes, nil
	})
}

// checkManualStatus keeps Occupied under control of check-in and check-out.
func checkManualStatus(from, to domain.RoomStatus) error {
	switch to {
	case domain.RoomAvailable, domain.RoomMaintenance, domain.RoomReserved:
	default:
		return ErrInvalidStatus
	}
	if from == domain.RoomOccupied {
		return ErrStatusManagedByStay
	}
	return nil
}

// Retire hides the room from the catalog and from new bookings. Existing
// bookings keep referencing it.
func (s *Service) Retire(ctx context.Context, caller access.Caller, id int64) error {
	if err := s.authz.Authorize(access.RoomManage, caller, access.Resource{}); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.log.WithField("room_id", id).Info("room retired")
	return nil
}

func (s *Service) BusyRanges(ctx context.Context, roomID int64, from, to time.Time) ([]domain.BusyRange, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if !to.After(from) {
		return nil, ErrInvalidDateRange
	}
	if _, err := s.Get(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.BusyRanges(ctx, roomID, from, to)
}
