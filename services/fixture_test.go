package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/qr-restaurant/database"
	"github.com/yeremiapane/qr-restaurant/kds"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

var adminSession = Session{UserID: "admin-user", Role: models.RoleAdmin}

type recorder struct {
	mu     sync.Mutex
	events []kds.Event
}

func (r *recorder) Publish(_ context.Context, e kds.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	events    *recorder
	tokens    *utils.TokenIssuer
	auth      *AuthService
	tenants   *TenantService
	catalog   *CatalogService
	tables    *TableService
	orders    *OrderService
	reviews   *ReviewService
	waiters   *WaiterService
	analytics *AnalyticsService
}

type tenant struct {
	restaurant models.Restaurant
	owner      Session
	kitchen    Session
	cashier    Session
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	events := &recorder{}
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	return &fixture{
		db:        db,
		events:    events,
		tokens:    tokens,
		auth:      NewAuthService(db, tokens, utils.NewMemoryRevoker()),
		tenants:   NewTenantService(db),
		catalog:   NewCatalogService(db),
		tables:    NewTableService(db, "https://qr.example.com/"),
		orders:    NewOrderService(db, events),
		reviews:   NewReviewService(db),
		waiters:   NewWaiterService(db, events),
		analytics: NewAnalyticsService(db),
	}
}

// newTenant creates a restaurant with owner, cashier and kitchen accounts
// and returns a session for each.
func (f *fixture) newTenant(t *testing.T, name string) tenant {
	t.Helper()
	slug := uuid.NewString()[:8]
	detail, err := f.tenants.CreateRestaurant(context.Background(), adminSession, CreateRestaurantInput{
		Name:    name,
		Owner:   &StaffInput{FullName: name + " Owner", Email: "owner-" + slug + "@test.com", Password: "owner123"},
		Cashier: &StaffInput{Email: "kasa-" + slug + "@test.com", Password: "kasa123"},
		Kitchen: &StaffInput{Email: "mutfak-" + slug + "@test.com", Password: "mutfak123"},
	})
	require.NoError(t, err)

	tn := tenant{restaurant: detail.Restaurant}
	for _, u := range detail.Staff {
		sess := Session{UserID: u.ID, Role: u.Role, RestaurantID: detail.ID}
		switch u.Role {
		case models.RoleOwner:
			tn.owner = sess
		case models.RoleKitchen:
			tn.kitchen = sess
		case models.RoleCashier:
			tn.cashier = sess
		}
	}
	return tn
}

func (f *fixture) newItem(t *testing.T, tn tenant, name string, price float64, prep int) models.MenuItem {
	t.Helper()
	ctx := context.Background()
	categoryName := "Genel"
	category, err := f.catalog.CreateCategory(ctx, tn.owner, CategoryInput{Name: &categoryName})
	require.NoError(t, err)

	in := MenuItemInput{CategoryID: &category.ID, Name: &name, Price: &price}
	if prep > 0 {
		in.PreparationTimeMinutes = &prep
	}
	item, err := f.catalog.CreateItem(ctx, tn.owner, in)
	require.NoError(t, err)
	return *item
}

func (f *fixture) newTable(t *testing.T, tn tenant, number string) models.Table {
	t.Helper()
	table, err := f.tables.CreateTable(context.Background(), tn.owner, TableInput{TableNumber: number})
	require.NoError(t, err)
	return *table
}

func (f *fixture) placeOrder(t *testing.T, table models.Table, item models.MenuItem, qty int) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), CreateOrderInput{
		TableID:       table.ID,
		Items:         []OrderItemInput{{MenuItemID: item.ID, Quantity: qty}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	return order
}
