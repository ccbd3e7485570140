package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}

// first loads one row by primary key, turning "no rows" into NotFound.
func first(db *gorm.DB, dst interface{}, id string, what string) error {
	err := db.Where("id = ?", id).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound("%s not found", what)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

func loadRestaurant(db *gorm.DB, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := first(db, &restaurant, id, "restaurant"); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// parseDay parses a YYYY-MM-DD date in loc and returns the start of that day.
func parseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, utils.Unprocessable("invalid date %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// readScope picks the restaurant a listing covers. Staff always see their
// own restaurant; an admin sees the requested one, or every restaurant
// when none is given.
func readScope(sess Session, requested string) string {
	if sess.IsAdmin() {
		return requested
	}
	return sess.RestaurantID
}
