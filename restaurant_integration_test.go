package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/qr-restaurant/database"
	"github.com/yeremiapane/qr-restaurant/kds"
	"github.com/yeremiapane/qr-restaurant/middlewares"
	"github.com/yeremiapane/qr-restaurant/router"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedAdmin(db, "admin@qr-restaurant.com", "admin123"))

	hub := kds.NewHub()
	r := router.SetupRouter(router.Deps{
		Auth:      services.NewAuthService(db, utils.NewTokenIssuer("test-secret", time.Hour), utils.NewMemoryRevoker()),
		Tenants:   services.NewTenantService(db),
		Catalog:   services.NewCatalogService(db),
		Tables:    services.NewTableService(db, "https://qr.example.com"),
		Orders:    services.NewOrderService(db, hub),
		Reviews:   services.NewReviewService(db),
		Waiters:   services.NewWaiterService(db, hub),
		Analytics: services.NewAnalyticsService(db),
		Hub:       hub,
		// Generous enough that the login limiter is the only one a test trips.
		LoginLimiter: middlewares.NewRateLimiter(rate.Every(time.Millisecond), 100),
	})
	return &testServer{t: t, db: db, router: r}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// expect asserts the status code and decodes the body into dst.
func (s *testServer) expect(w *httptest.ResponseRecorder, code int, dst interface{}) {
	s.t.Helper()
	require.Equal(s.t, code, w.Code, w.Body.String())
	if dst != nil {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), dst))
	}
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	var res struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	s.expect(s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password}), http.StatusOK, &res)
	require.Equal(s.t, "bearer", res.TokenType)
	require.NotEmpty(s.t, res.AccessToken)
	return res.AccessToken
}

type restaurantTokens struct {
	id      string
	owner   string
	cashier string
	kitchen string
}

// createRestaurant provisions a restaurant with its three staff accounts
// and logs each of them in.
func (s *testServer) createRestaurant(adminToken, name, slug string) restaurantTokens {
	s.t.Helper()
	var created struct {
		ID    string `json:"id"`
		Staff []struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"staff"`
	}
	s.expect(s.do(http.MethodPost, "/api/admin/restaurants", adminToken, gin.H{
		"name":    name,
		"address": "İstiklal Cd. 1",
		"owner":   gin.H{"full_name": name + " Sahibi", "email": "owner@" + slug + ".com", "password": "owner123"},
		"kasa":    gin.H{"email": "kasa@" + slug + ".com", "password": "kasa123"},
		"mutfak":  gin.H{"email": "mutfak@" + slug + ".com", "password": "mutfak123"},
	}), http.StatusCreated, &created)
	require.Len(s.t, created.Staff, 3)

	return restaurantTokens{
		id:      created.ID,
		owner:   s.login("owner@"+slug+".com", "owner123"),
		cashier: s.login("kasa@"+slug+".com", "kasa123"),
		kitchen: s.login("mutfak@"+slug+".com", "mutfak123"),
	}
}

type menuSetup struct {
	tableID string
	itemID  string
}

func (s *testServer) setupMenu(r restaurantTokens) menuSetup {
	s.t.Helper()
	var category, item, table struct {
		ID string `json:"id"`
	}
	s.expect(s.do(http.MethodPost, "/api/owner/menu/categories", r.owner, gin.H{"name": "İçecekler"}), http.StatusCreated, &category)
	s.expect(s.do(http.MethodPost, "/api/owner/menu/items", r.owner, gin.H{
		"category_id": category.ID,
		"name":        "Ayran",
		"price":       15.00,
	}), http.StatusCreated, &item)
	s.expect(s.do(http.MethodPost, "/api/owner/tables", r.owner, gin.H{"table_number": "5"}), http.StatusCreated, &table)
	return menuSetup{tableID: table.ID, itemID: item.ID}
}

type orderBody struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	TotalAmount   float64 `json:"total_amount"`
	TableNumber   string  `json:"table_number"`
	Items         []struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"items"`
}

func (s *testServer) placeOrder(m menuSetup, quantity int) orderBody {
	s.t.Helper()
	var order orderBody
	s.expect(s.do(http.MethodPost, "/api/orders", "", gin.H{
		"table_id": m.tableID,
		// The client-side price is ignored.
		"items":          []gin.H{{"menu_item_id": m.itemID, "quantity": quantity, "price": 0.01}},
		"payment_method": "cash",
	}), http.StatusCreated, &order)
	return order
}

func TestQRMenuToCompletedOrder(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@qr-restaurant.com", "admin123")
	r := s.createRestaurant(admin, "Baydöner", "baydoner")
	m := s.setupMenu(r)

	var menu struct {
		Restaurant struct {
			Name string `json:"name"`
		} `json:"restaurant"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Items []struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"items"`
	}
	s.expect(s.do(http.MethodGet, "/api/menu/"+m.tableID, "", nil), http.StatusOK, &menu)
	assert.Equal(t, "Baydöner", menu.Restaurant.Name)
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "İçecekler", menu.Categories[0].Name)
	require.Len(t, menu.Items, 1)
	assert.Equal(t, 15.00, menu.Items[0].Price)
	s.expect(s.do(http.MethodGet, "/api/public/menu/"+m.tableID, "", nil), http.StatusOK, nil)

	order := s.placeOrder(m, 2)
	assert.Equal(t, 30.00, order.TotalAmount)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "unpaid", order.PaymentStatus)
	assert.Equal(t, "5", order.TableNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Ayran", order.Items[0].Name)
	assert.Equal(t, 15.00, order.Items[0].Price)

	var queue []orderBody
	s.expect(s.do(http.MethodGet, "/api/kitchen/orders", r.kitchen, nil), http.StatusOK, &queue)
	require.Len(t, queue, 1)
	assert.Equal(t, order.ID, queue[0].ID)

	// Skipping ahead is refused and the cashier cannot cook.
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", r.kitchen, gin.H{"status": "completed"}), http.StatusConflict, nil)
	s.expect(s.do(http.MethodPut, "/api/cashier/orders/"+order.ID+"/status", r.cashier, gin.H{"status": "preparing"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", r.kitchen, gin.H{"status": "ready"}), http.StatusConflict, nil)

	var updated orderBody
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", r.kitchen, gin.H{"status": "preparing"}), http.StatusOK, &updated)
	assert.Equal(t, "preparing", updated.Status)
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", r.kitchen, gin.H{"status": "ready"}), http.StatusOK, &updated)
	assert.Equal(t, "ready", updated.Status)
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", r.kitchen, gin.H{"status": "completed"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", r.kitchen, gin.H{"status": "pending"}), http.StatusConflict, nil)

	s.expect(s.do(http.MethodPut, "/api/cashier/orders/"+order.ID+"/payment", r.cashier, gin.H{"payment_status": "paid"}), http.StatusOK, &updated)
	assert.Equal(t, "paid", updated.PaymentStatus)
	s.expect(s.do(http.MethodPut, "/api/cashier/orders/"+order.ID+"/payment", r.cashier, gin.H{"payment_status": "paid"}), http.StatusOK, nil)
	s.expect(s.do(http.MethodPut, "/api/cashier/orders/"+order.ID+"/payment", r.cashier, gin.H{"payment_status": "refunded"}), http.StatusUnprocessableEntity, nil)

	s.expect(s.do(http.MethodPut, "/api/cashier/orders/"+order.ID+"/status", r.cashier, gin.H{"status": "completed"}), http.StatusOK, &updated)
	assert.Equal(t, "completed", updated.Status)

	s.expect(s.do(http.MethodGet, "/api/kitchen/orders", r.kitchen, nil), http.StatusOK, &queue)
	assert.Empty(t, queue)
	s.expect(s.do(http.MethodGet, "/api/cashier/orders", r.cashier, nil), http.StatusOK, &queue)
	assert.Empty(t, queue)

	var tracked orderBody
	s.expect(s.do(http.MethodGet, "/api/orders/"+order.ID, "", nil), http.StatusOK, &tracked)
	assert.Equal(t, "completed", tracked.Status)

	var stats struct {
		OrdersTotal  int64   `json:"orders_total"`
		RevenueTotal float64 `json:"revenue_total"`
	}
	s.expect(s.do(http.MethodGet, "/api/owner/stats", r.owner, nil), http.StatusOK, &stats)
	assert.EqualValues(t, 1, stats.OrdersTotal)
	assert.Equal(t, 30.00, stats.RevenueTotal)
}

func TestPublicEndpointsValidateInput(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@qr-restaurant.com", "admin123")
	r := s.createRestaurant(admin, "Baydöner", "baydoner")
	m := s.setupMenu(r)

	var errBody utils.ErrorResponse
	s.expect(s.do(http.MethodPost, "/api/orders", "", gin.H{"table_id": m.tableID, "items": []gin.H{}, "payment_method": "cash"}), http.StatusUnprocessableEntity, &errBody)
	assert.Equal(t, utils.KindUnprocessable, errBody.Error)
	s.expect(s.do(http.MethodPost, "/api/orders", "", gin.H{"table_id": "missing", "items": []gin.H{{"menu_item_id": m.itemID, "quantity": 1}}, "payment_method": "cash"}), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodPost, "/api/orders", "", gin.H{"table_id": m.tableID, "items": []gin.H{{"menu_item_id": m.itemID, "quantity": 0}}, "payment_method": "cash"}), http.StatusUnprocessableEntity, nil)
	s.expect(s.do(http.MethodPost, "/api/orders", "", gin.H{"table_id": m.tableID, "items": []gin.H{{"menu_item_id": m.itemID, "quantity": 1}}, "payment_method": "bitcoin"}), http.StatusUnprocessableEntity, nil)
	s.expect(s.do(http.MethodGet, "/api/menu/missing", "", nil), http.StatusNotFound, nil)

	s.expect(s.do(http.MethodPost, "/api/waiter-call", "", gin.H{"table_id": m.tableID}), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/api/reviews", "", gin.H{"restaurant_id": r.id, "rating": 5, "comment": "Çok iyi"}), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/api/reviews", "", gin.H{"restaurant_id": r.id, "rating": 9}), http.StatusUnprocessableEntity, nil)

	var calls []struct {
		ID          string `json:"id"`
		TableNumber string `json:"table_number"`
	}
	s.expect(s.do(http.MethodGet, "/api/cashier/waiter-calls", r.cashier, nil), http.StatusOK, &calls)
	require.Len(t, calls, 1)
	assert.Equal(t, "5", calls[0].TableNumber)
	s.expect(s.do(http.MethodPut, "/api/cashier/waiter-calls/"+calls[0].ID+"/resolve", r.cashier, nil), http.StatusOK, nil)

	// Suspended restaurants stop taking orders.
	s.expect(s.do(http.MethodPut, "/api/admin/restaurants/"+r.id, admin, gin.H{"subscription_status": "inactive"}), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/api/menu/"+m.tableID, "", nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPost, "/api/orders", "", gin.H{"table_id": m.tableID, "items": []gin.H{{"menu_item_id": m.itemID, "quantity": 1}}, "payment_method": "cash"}), http.StatusForbidden, nil)
}

func TestTenantIsolation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@qr-restaurant.com", "admin123")
	a := s.createRestaurant(admin, "Baydöner", "baydoner")
	b := s.createRestaurant(admin, "Kebapçı", "kebapci")
	ma := s.setupMenu(a)
	order := s.placeOrder(ma, 1)

	s.expect(s.do(http.MethodPut, "/api/owner/orders/"+order.ID+"/status", b.owner, gin.H{"status": "completed"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPut, "/api/cashier/orders/"+order.ID+"/payment", b.cashier, gin.H{"payment_status": "paid"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPut, "/api/kitchen/orders/"+order.ID+"/status", b.kitchen, gin.H{"status": "preparing"}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/api/owner/tables/"+ma.tableID, b.owner, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPut, "/api/owner/menu/items/"+ma.itemID, b.owner, gin.H{"price": 1}), http.StatusForbidden, nil)

	var orders []orderBody
	s.expect(s.do(http.MethodGet, "/api/owner/orders", b.owner, nil), http.StatusOK, &orders)
	assert.Empty(t, orders)
	s.expect(s.do(http.MethodGet, "/api/owner/orders", a.owner, nil), http.StatusOK, &orders)
	assert.Len(t, orders, 1)
	s.expect(s.do(http.MethodGet, "/api/admin/orders?restaurant_id="+b.id, admin, nil), http.StatusOK, &orders)
	assert.Empty(t, orders)
	s.expect(s.do(http.MethodGet, "/api/admin/orders", admin, nil), http.StatusOK, &orders)
	assert.Len(t, orders, 1)

	// Role groups reject other roles outright.
	s.expect(s.do(http.MethodGet, "/api/owner/orders", a.kitchen, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/api/admin/restaurants", a.owner, nil), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/api/kitchen/orders", "", nil), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/api/auth/register", a.owner, gin.H{"email": "x@y.com", "password": "secret1", "role": "kitchen", "restaurant_id": a.id}), http.StatusForbidden, nil)
}

func TestLogoutRevokesTokenOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@qr-restaurant.com", "admin123")

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	s.expect(s.do(http.MethodGet, "/api/auth/me", admin, nil), http.StatusOK, &me)
	assert.Equal(t, "admin@qr-restaurant.com", me.Email)
	assert.Equal(t, "admin", me.Role)

	s.expect(s.do(http.MethodPost, "/api/auth/logout", admin, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/api/auth/me", admin, nil), http.StatusUnauthorized, nil)

	var errBody utils.ErrorResponse
	s.expect(s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@qr-restaurant.com", "password": "nope"}), http.StatusUnauthorized, &errBody)
	assert.Equal(t, utils.KindInvalidCredentials, errBody.Error)

	s.expect(s.do(http.MethodGet, "/ping", "", nil), http.StatusOK, nil)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.router = router.SetupRouter(router.Deps{
		Auth: services.NewAuthService(s.db, utils.NewTokenIssuer("test-secret", time.Hour), nil),
		Hub:  kds.NewHub(),
	})

	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@qr-restaurant.com", "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}
	s.expect(s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "admin@qr-restaurant.com", "password": "admin123"}), http.StatusTooManyRequests, nil)
}
