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

// MaxLineQuantity bounds a single cart line.
const MaxLineQuantity = 999

var (
	kitchenStatuses = []models.OrderStatus{models.OrderPending, models.OrderPreparing, models.OrderReady}
)

type OrderItemInput struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type CreateOrderInput struct {
	TableID       string
	Items         []OrderItemInput
	PaymentMethod models.PaymentMethod
}

// OrderFilter narrows ListOrders. Dates are YYYY-MM-DD and inclusive.
type OrderFilter struct {
	RestaurantID  string
	Status        string
	PaymentStatus string
	Date          string
	From          string
	To            string
}

type OrderService struct {
	DB     *gorm.DB
	Events kds.Publisher
	now    func() time.Time
}

func NewOrderService(db *gorm.DB, events kds.Publisher) *OrderService {
	if events == nil {
		events = kds.Discard{}
	}
	return &OrderService{DB: db, Events: events, now: time.Now}
}

// EstimateCompletionMinutes is the longest preparation time among the
// ordered items; the kitchen prepares lines in parallel, so quantity and
// line count do not add up.
func EstimateCompletionMinutes(items []models.MenuItem) int {
	estimate := 0
	for _, item := range items {
		prep := item.PreparationTimeMinutes
		if prep <= 0 {
			prep = models.DefaultPreparationMinutes
		}
		if prep > estimate {
			estimate = prep
		}
	}
	return estimate
}

// CreateOrder places a diner's order. Names and prices are always taken
// from the catalog; nothing price-related is read from the client.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	var order models.Order

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := first(tx, &table, in.TableID, "table"); err != nil {
			return err
		}
		restaurant, err := loadRestaurant(tx, table.RestaurantID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.NotFound("table not found")
			}
			return err
		}
		if !restaurant.Active() {
			return utils.Forbidden("restaurant is not accepting orders")
		}

		if len(in.Items) == 0 {
			return utils.Unprocessable("cart is empty")
		}
		if !in.PaymentMethod.Valid() {
			return utils.Unprocessable("payment_method must be cash or online")
		}

		ids := make([]string, 0, len(in.Items))
		for _, line := range in.Items {
			if line.MenuItemID == "" {
				return utils.Unprocessable("menu_item_id is required")
			}
			if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
				return utils.Unprocessable("quantity must be between 1 and %d", MaxLineQuantity)
			}
			ids = append(ids, line.MenuItemID)
		}

		var catalog []models.MenuItem
		if err := tx.Where("restaurant_id = ? AND id IN ?", restaurant.ID, ids).Find(&catalog).Error; err != nil {
			return fmt.Errorf("load menu items: %w", err)
		}
		byID := make(map[string]models.MenuItem, len(catalog))
		for _, item := range catalog {
			byID[item.ID] = item
		}

		var total int64
		ordered := make([]models.MenuItem, 0, len(in.Items))
		lines := make([]models.OrderItem, 0, len(in.Items))
		for i, line := range in.Items {
			item, ok := byID[line.MenuItemID]
			if !ok {
				return utils.Unprocessable("menu item %s is not on this menu", line.MenuItemID)
			}
			if !item.Available {
				return utils.Unprocessable("%s is currently unavailable", item.Name)
			}
			total += utils.LineTotal(item.Price, line.Quantity)
			if total > utils.MaxAmountCents {
				return utils.Unprocessable("order total exceeds %.2f", utils.MaxAmount)
			}
			ordered = append(ordered, item)
			lines = append(lines, models.OrderItem{
				Position:   i,
				MenuItemID: item.ID,
				Name:       item.Name,
				Price:      utils.RoundMoney(item.Price),
				Quantity:   line.Quantity,
			})
		}

		order = models.Order{
			RestaurantID:               restaurant.ID,
			TableID:                    table.ID,
			TableNumber:                table.TableNumber,
			Items:                      lines,
			TotalAmount:                utils.FromCents(total),
			PaymentMethod:              in.PaymentMethod,
			PaymentStatus:              models.PaymentUnpaid,
			Status:                     models.OrderPending,
			EstimatedCompletionMinutes: EstimateCompletionMinutes(ordered),
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %s created for table %s (total=%.2f)", order.ID, order.TableNumber, order.TotalAmount)
	s.Events.Publish(ctx, kds.NewEvent(kds.EventOrderCreated, order.RestaurantID, order))
	return &order, nil
}

func (s *OrderService) loadOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// GetOrder returns one order to a staff member of its restaurant.
func (s *OrderService) GetOrder(ctx context.Context, sess Session, id string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourceOrder, ActionRead, order.RestaurantID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetPublicOrder lets the diner who holds the order id follow its progress.
func (s *OrderService) GetPublicOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.loadOrder(ctx, id)
}

// TransitionStatus moves an order one step along
// pending -> preparing -> ready -> completed. Asking for the state the order
// is already in succeeds without changes.
func (s *OrderService) TransitionStatus(ctx context.Context, sess Session, orderID string, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, utils.Unprocessable("unknown order status %q", target)
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourceOrder, ActionUpdate, order.RestaurantID); err != nil {
		return nil, err
	}

	if order.Status == target {
		return order, nil
	}
	if next, ok := order.Status.Next(); !ok || next != target {
		return nil, utils.InvalidTransition("cannot move order from %s to %s", order.Status, target)
	}
	if !CanProduceStatus(sess.Role, target) {
		return nil, utils.Forbidden("role %s may not mark orders %s", sess.Role, target)
	}

	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(map[string]interface{}{"status": target, "updated_at": s.now()})
	if res.Error != nil {
		return nil, fmt.Errorf("update order status: %w", res.Error)
	}

	from := order.Status
	order, err = s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		// Someone else moved it first.
		if order.Status == target {
			return order, nil
		}
		return nil, utils.InvalidTransition("cannot move order from %s to %s", order.Status, target)
	}

	utils.InfoLogger.Printf("Order %s moved %s -> %s by %s", order.ID, from, target, sess.Role)
	s.Events.Publish(ctx, kds.NewEvent(kds.EventOrderStatusChanged, order.RestaurantID, order))
	return order, nil
}

// ConfirmPayment marks an order paid. unpaid -> paid is one-way and
// re-confirming is a no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, sess Session, orderID string, target models.PaymentStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, utils.Unprocessable("unknown payment status %q", target)
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourcePayment, ActionUpdate, order.RestaurantID); err != nil {
		return nil, err
	}

	if order.PaymentStatus == target {
		return order, nil
	}
	if target == models.PaymentUnpaid {
		return nil, utils.InvalidTransition("a paid order cannot be marked unpaid")
	}

	now := s.now()
	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentUnpaid).
		Updates(map[string]interface{}{"payment_status": models.PaymentPaid, "paid_at": now, "updated_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("confirm payment: %w", res.Error)
	}

	order, err = s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return order, nil
	}

	utils.InfoLogger.Printf("Payment confirmed for order %s by %s", order.ID, sess.Role)
	s.Events.Publish(ctx, kds.NewEvent(kds.EventOrderPaid, order.RestaurantID, order))
	return order, nil
}

// ListOrders returns the queue a role works from: kitchen sees active
// orders, cashier sees unpaid ones, owner and admin see everything.
func (s *OrderService) ListOrders(ctx context.Context, sess Session, filter OrderFilter) ([]models.Order, error) {
	scope := sess.RestaurantID
	if sess.IsAdmin() {
		scope = filter.RestaurantID
	}
	if err := Authorize(sess, ResourceOrder, ActionRead, scope); err != nil {
		return nil, err
	}

	query := s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if scope != "" {
		query = query.Where("restaurant_id = ?", scope)
	}

	switch sess.Role {
	case models.RoleKitchen:
		query = query.Where("status IN ?", kitchenStatuses).Order("created_at ASC")
	case models.RoleCashier:
		query = query.Where("payment_status = ?", models.PaymentUnpaid).Order("created_at ASC")
	default:
		query = query.Order("created_at DESC")
	}

	query, err := applyOrderFilter(query, filter, s.now().Location())
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func applyOrderFilter(query *gorm.DB, filter OrderFilter, loc *time.Location) (*gorm.DB, error) {
	if filter.Status != "" {
		status := models.OrderStatus(filter.Status)
		if !status.Valid() {
			return nil, utils.Unprocessable("unknown order status %q", filter.Status)
		}
		query = query.Where("status = ?", status)
	}
	if filter.PaymentStatus != "" {
		status := models.PaymentStatus(filter.PaymentStatus)
		if !status.Valid() {
			return nil, utils.Unprocessable("unknown payment status %q", filter.PaymentStatus)
		}
		query = query.Where("payment_status = ?", status)
	}

	from, to := filter.From, filter.To
	if filter.Date != "" {
		from, to = filter.Date, filter.Date
	}
	if from != "" {
		day, err := parseDay(from, loc)
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at >= ?", day)
	}
	if to != "" {
		day, err := parseDay(to, loc)
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at < ?", day.AddDate(0, 0, 1))
	}
	return query, nil
}
