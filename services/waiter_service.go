package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/qr-restaurant/kds"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

type WaiterService struct {
	DB     *gorm.DB
	Events kds.Publisher
	now    func() time.Time
}

func NewWaiterService(db *gorm.DB, events kds.Publisher) *WaiterService {
	if events == nil {
		events = kds.Discard{}
	}
	return &WaiterService{DB: db, Events: events, now: time.Now}
}

var errCallAlreadyOpen = errors.New("waiter call already open")

// CallWaiter opens a call for a table. A table has at most one open call;
// pressing the button again returns the existing one.
func (s *WaiterService) CallWaiter(ctx context.Context, tableID string) (*models.WaiterCall, error) {
	var call models.WaiterCall

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := first(tx, &table, tableID, "table"); err != nil {
			return err
		}
		restaurant, err := loadRestaurant(tx, table.RestaurantID)
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NotFound("table not found")
		}
		if err != nil {
			return err
		}
		if !restaurant.Active() {
			return utils.Forbidden("restaurant subscription is inactive")
		}

		call = models.WaiterCall{
			RestaurantID: restaurant.ID,
			TableID:      table.ID,
			TableNumber:  table.TableNumber,
			OpenTableID:  &table.ID,
		}
		if err := tx.Create(&call).Error; err != nil {
			if isDuplicateKey(err) {
				return errCallAlreadyOpen
			}
			return fmt.Errorf("create waiter call: %w", err)
		}
		return nil
	})
	if errors.Is(err, errCallAlreadyOpen) {
		call = models.WaiterCall{}
		if err := s.DB.WithContext(ctx).Where("open_table_id = ?", tableID).First(&call).Error; err != nil {
			return nil, fmt.Errorf("load open waiter call: %w", err)
		}
		return &call, nil
	}
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Waiter called to table %s", call.TableNumber)
	s.Events.Publish(ctx, kds.NewEvent(kds.EventWaiterCalled, call.RestaurantID, call))
	return &call, nil
}

func (s *WaiterService) ListCalls(ctx context.Context, sess Session, includeResolved bool) ([]models.WaiterCall, error) {
	if err := Authorize(sess, ResourceWaiterCall, ActionRead, sess.RestaurantID); err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Where("restaurant_id = ?", sess.RestaurantID)
	if !includeResolved {
		query = query.Where("resolved = ?", false)
	}
	calls := []models.WaiterCall{}
	if err := query.Order("created_at ASC").Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("list waiter calls: %w", err)
	}
	return calls, nil
}

// ResolveCall closes a call. Resolving it twice is harmless.
func (s *WaiterService) ResolveCall(ctx context.Context, sess Session, id string) (*models.WaiterCall, error) {
	var call models.WaiterCall
	if err := first(s.DB.WithContext(ctx), &call, id, "waiter call"); err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourceWaiterCall, ActionUpdate, call.RestaurantID); err != nil {
		return nil, err
	}
	if call.Resolved {
		return &call, nil
	}

	now := s.now()
	res := s.DB.WithContext(ctx).Model(&models.WaiterCall{}).
		Where("id = ? AND resolved = ?", call.ID, false).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": now, "open_table_id": nil})
	if res.Error != nil {
		return nil, fmt.Errorf("resolve waiter call: %w", res.Error)
	}
	if err := first(s.DB.WithContext(ctx), &call, id, "waiter call"); err != nil {
		return nil, err
	}
	if res.RowsAffected > 0 {
		s.Events.Publish(ctx, kds.NewEvent(kds.EventWaiterCallResolved, call.RestaurantID, call))
	}
	return &call, nil
}
