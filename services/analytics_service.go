package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

const (
	defaultAnalyticsDays = 7
	maxAnalyticsDays     = 90
	topItemsLimit        = 10
)

type Stats struct {
	RestaurantsTotal  int64            `json:"restaurants_total,omitempty"`
	RestaurantsActive int64            `json:"restaurants_active,omitempty"`
	UsersTotal        int64            `json:"users_total,omitempty"`
	OrdersTotal       int64            `json:"orders_total"`
	OrdersToday       int64            `json:"orders_today"`
	RevenueTotal      float64          `json:"revenue_total"`
	RevenueToday      float64          `json:"revenue_today"`
	UnpaidOrders      int64            `json:"unpaid_orders"`
	AverageRating     float64          `json:"average_rating"`
	ReviewsTotal      int64            `json:"reviews_total"`
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
}

type DailyPoint struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type ItemSales struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int64   `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

type RestaurantPerformance struct {
	RestaurantID  string  `json:"restaurant_id"`
	Name          string  `json:"name"`
	Orders        int64   `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AverageRating float64 `json:"average_rating"`
	Reviews       int64   `json:"reviews"`
}

type Analytics struct {
	Days        int                     `json:"days"`
	Restaurants []RestaurantPerformance `json:"restaurants,omitempty"`
	TopItems    []ItemSales             `json:"top_items"`
	Daily       []DailyPoint            `json:"daily"`
}

// OwnerSummary is one restaurant's dashboard: headline numbers plus the
// same breakdowns admins get across all restaurants.
type OwnerSummary struct {
	Stats
	TopItems []ItemSales  `json:"top_items"`
	Daily    []DailyPoint `json:"daily"`
}

type AnalyticsService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db, now: time.Now}
}

// ClampDays bounds the analytics window to 1..90 days, defaulting to a week.
func ClampDays(days int) int {
	if days <= 0 {
		return defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		return maxAnalyticsDays
	}
	return days
}

// scoped narrows a query on a table with a restaurant_id column; an empty
// id means every restaurant.
func scoped(db *gorm.DB, restaurantID string) *gorm.DB {
	if restaurantID == "" {
		return db
	}
	return db.Where("restaurant_id = ?", restaurantID)
}

func (s *AnalyticsService) orderStats(ctx context.Context, restaurantID string) (Stats, error) {
	db := s.DB.WithContext(ctx)
	today := startOfDay(s.now())
	stats := Stats{OrdersByStatus: map[string]int64{}}

	orders := func() *gorm.DB { return scoped(db.Model(&models.Order{}), restaurantID) }
	revenue := func(q *gorm.DB) (float64, error) {
		var sum float64
		err := q.Where("payment_status = ?", models.PaymentPaid).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&sum).Error
		return utils.RoundMoney(sum), err
	}

	var err error
	if err = orders().Count(&stats.OrdersTotal).Error; err != nil {
		return stats, fmt.Errorf("count orders: %w", err)
	}
	if err = orders().Where("created_at >= ?", today).Count(&stats.OrdersToday).Error; err != nil {
		return stats, fmt.Errorf("count today's orders: %w", err)
	}
	if err = orders().Where("payment_status = ?", models.PaymentUnpaid).Count(&stats.UnpaidOrders).Error; err != nil {
		return stats, fmt.Errorf("count unpaid orders: %w", err)
	}
	if stats.RevenueTotal, err = revenue(orders()); err != nil {
		return stats, fmt.Errorf("sum revenue: %w", err)
	}
	if stats.RevenueToday, err = revenue(orders().Where("created_at >= ?", today)); err != nil {
		return stats, fmt.Errorf("sum today's revenue: %w", err)
	}

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err = orders().Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return stats, fmt.Errorf("count orders by status: %w", err)
	}
	for _, st := range []models.OrderStatus{models.OrderPending, models.OrderPreparing, models.OrderReady, models.OrderCompleted} {
		stats.OrdersByStatus[string(st)] = 0
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	var rating struct {
		Average float64
		Count   int64
	}
	err = scoped(db.Model(&models.Review{}), restaurantID).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&rating).Error
	if err != nil {
		return stats, fmt.Errorf("average rating: %w", err)
	}
	stats.AverageRating = roundRating(rating.Average)
	stats.ReviewsTotal = rating.Count
	return stats, nil
}

func roundRating(avg float64) float64 {
	return utils.RoundMoney(avg)
}

// AdminStats is the platform-wide dashboard.
func (s *AnalyticsService) AdminStats(ctx context.Context, sess Session) (*Stats, error) {
	if err := Authorize(sess, ResourceAnalytics, ActionRead, ""); err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, utils.Forbidden("platform statistics are for admins only")
	}

	stats, err := s.orderStats(ctx, "")
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Restaurant{}).Count(&stats.RestaurantsTotal).Error; err != nil {
		return nil, fmt.Errorf("count restaurants: %w", err)
	}
	err = db.Model(&models.Restaurant{}).
		Where("subscription_status = ?", models.SubscriptionActive).
		Count(&stats.RestaurantsActive).Error
	if err != nil {
		return nil, fmt.Errorf("count active restaurants: %w", err)
	}
	if err := db.Model(&models.User{}).Count(&stats.UsersTotal).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &stats, nil
}

// AdminAnalytics breaks the last days of activity down by restaurant,
// menu item and day.
func (s *AnalyticsService) AdminAnalytics(ctx context.Context, sess Session, days int) (*Analytics, error) {
	if err := Authorize(sess, ResourceAnalytics, ActionRead, ""); err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, utils.Forbidden("platform analytics are for admins only")
	}
	days = ClampDays(days)
	since := s.windowStart(days)

	result := &Analytics{Days: days}
	var err error
	if result.Restaurants, err = s.restaurantPerformance(ctx, since); err != nil {
		return nil, err
	}
	if result.TopItems, err = s.topItems(ctx, "", since); err != nil {
		return nil, err
	}
	if result.Daily, err = s.daily(ctx, "", days); err != nil {
		return nil, err
	}
	return result, nil
}

// OwnerSummary is AdminStats and AdminAnalytics for the caller's restaurant.
func (s *AnalyticsService) OwnerSummary(ctx context.Context, sess Session, days int) (*OwnerSummary, error) {
	if err := Authorize(sess, ResourceAnalytics, ActionRead, sess.RestaurantID); err != nil {
		return nil, err
	}
	if sess.RestaurantID == "" {
		return nil, utils.Forbidden("no restaurant in session")
	}
	days = ClampDays(days)

	stats, err := s.orderStats(ctx, sess.RestaurantID)
	if err != nil {
		return nil, err
	}
	summary := &OwnerSummary{Stats: stats}
	if summary.TopItems, err = s.topItems(ctx, sess.RestaurantID, s.windowStart(days)); err != nil {
		return nil, err
	}
	if summary.Daily, err = s.daily(ctx, sess.RestaurantID, days); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *AnalyticsService) windowStart(days int) time.Time {
	return startOfDay(s.now()).AddDate(0, 0, -(days - 1))
}

func (s *AnalyticsService) restaurantPerformance(ctx context.Context, since time.Time) ([]RestaurantPerformance, error) {
	db := s.DB.WithContext(ctx)

	var restaurants []models.Restaurant
	if err := db.Order("name ASC").Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}

	var orderRows []struct {
		RestaurantID string
		Orders       int64
		Revenue      float64
	}
	err := db.Model(&models.Order{}).
		Select("restaurant_id, COUNT(*) AS orders, COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS revenue", models.PaymentPaid).
		Where("created_at >= ?", since).
		Group("restaurant_id").
		Scan(&orderRows).Error
	if err != nil {
		return nil, fmt.Errorf("orders per restaurant: %w", err)
	}

	var ratingRows []struct {
		RestaurantID  string
		AverageRating float64
		Reviews       int64
	}
	err = db.Model(&models.Review{}).
		Select("restaurant_id, AVG(rating) AS average_rating, COUNT(*) AS reviews").
		Group("restaurant_id").
		Scan(&ratingRows).Error
	if err != nil {
		return nil, fmt.Errorf("ratings per restaurant: %w", err)
	}

	byID := make(map[string]*RestaurantPerformance, len(restaurants))
	result := make([]RestaurantPerformance, len(restaurants))
	for i, r := range restaurants {
		result[i] = RestaurantPerformance{RestaurantID: r.ID, Name: r.Name}
		byID[r.ID] = &result[i]
	}
	for _, row := range orderRows {
		if p, ok := byID[row.RestaurantID]; ok {
			p.Orders = row.Orders
			p.Revenue = utils.RoundMoney(row.Revenue)
		}
	}
	for _, row := range ratingRows {
		if p, ok := byID[row.RestaurantID]; ok {
			p.AverageRating = roundRating(row.AverageRating)
			p.Reviews = row.Reviews
		}
	}
	return result, nil
}

func (s *AnalyticsService) topItems(ctx context.Context, restaurantID string, since time.Time) ([]ItemSales, error) {
	query := s.DB.WithContext(ctx).Table("order_items").
		Select("order_items.menu_item_id, order_items.name, SUM(order_items.quantity) AS quantity, SUM(order_items.price * order_items.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ?", since)
	if restaurantID != "" {
		query = query.Where("orders.restaurant_id = ?", restaurantID)
	}

	items := []ItemSales{}
	err := query.Group("order_items.menu_item_id, order_items.name").
		Order("quantity DESC").
		Limit(topItemsLimit).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	for i := range items {
		items[i].Revenue = utils.RoundMoney(items[i].Revenue)
	}
	return items, nil
}

// daily buckets orders by calendar day in Go so the query stays portable
// across the SQL dialects gorm talks to.
func (s *AnalyticsService) daily(ctx context.Context, restaurantID string, days int) ([]DailyPoint, error) {
	since := s.windowStart(days)
	var rows []struct {
		TotalAmount   float64
		PaymentStatus models.PaymentStatus
		CreatedAt     time.Time
	}
	err := scoped(s.DB.WithContext(ctx).Model(&models.Order{}), restaurantID).
		Select("total_amount, payment_status, created_at").
		Where("created_at >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily orders: %w", err)
	}

	loc := s.now().Location()
	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	cents := make([]int64, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format(dateLayout)
		points[i] = DailyPoint{Date: date}
		index[date] = i
	}
	for _, row := range rows {
		i, ok := index[row.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		points[i].Orders++
		if row.PaymentStatus == models.PaymentPaid {
			cents[i] += utils.ToCents(row.TotalAmount)
		}
	}
	for i := range points {
		points[i].Revenue = utils.FromCents(cents[i])
	}
	return points, nil
}
