package services

import (
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type Resource string

const (
	ResourceRestaurant Resource = "restaurant"
	ResourceUser       Resource = "user"
	ResourceCategory   Resource = "category"
	ResourceMenuItem   Resource = "menu_item"
	ResourceTable      Resource = "table"
	ResourceOrder      Resource = "order"
	ResourcePayment    Resource = "payment"
	ResourceReview     Resource = "review"
	ResourceWaiterCall Resource = "waiter_call"
	ResourceAnalytics  Resource = "analytics"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type grant map[Resource][]Action

var crud = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

// policy is the single authorization table, keyed by (role, resource, action).
var policy = map[models.Role]grant{
	models.RoleAdmin: {
		ResourceRestaurant: crud,
		ResourceUser:       {ActionRead, ActionCreate},
		ResourceCategory:   {ActionRead},
		ResourceMenuItem:   {ActionRead},
		ResourceTable:      {ActionRead},
		ResourceOrder:      {ActionRead},
		ResourceReview:     {ActionRead},
		ResourceWaiterCall: {ActionRead},
		ResourceAnalytics:  {ActionRead},
	},
	models.RoleOwner: {
		ResourceRestaurant: {ActionRead},
		ResourceCategory:   crud,
		ResourceMenuItem:   crud,
		ResourceTable:      crud,
		ResourceOrder:      {ActionRead, ActionUpdate},
		ResourcePayment:    {ActionUpdate},
		ResourceReview:     {ActionRead},
		ResourceWaiterCall: {ActionRead, ActionUpdate},
		ResourceAnalytics:  {ActionRead},
	},
	models.RoleKitchen: {
		ResourceOrder: {ActionRead, ActionUpdate},
	},
	models.RoleCashier: {
		ResourceOrder:      {ActionRead, ActionUpdate},
		ResourcePayment:    {ActionUpdate},
		ResourceWaiterCall: {ActionRead, ActionUpdate},
	},
}

// statusProducers lists which roles may move an order into each state.
var statusProducers = map[models.OrderStatus][]models.Role{
	models.OrderPreparing: {models.RoleKitchen},
	models.OrderReady:     {models.RoleKitchen},
	models.OrderCompleted: {models.RoleCashier, models.RoleOwner},
}

// Allowed reports whether role may perform action on resource, ignoring tenancy.
func Allowed(role models.Role, resource Resource, action Action) bool {
	for _, a := range policy[role][resource] {
		if a == action {
			return true
		}
	}
	return false
}

// Authorize checks the policy table and then the tenant boundary: every role
// except admin may only touch resources of its own restaurant.
func Authorize(s Session, resource Resource, action Action, restaurantID string) error {
	if !Allowed(s.Role, resource, action) {
		return utils.Forbidden("role %s may not %s %s", s.Role, action, resource)
	}
	if s.IsAdmin() {
		return nil
	}
	if s.RestaurantID == "" || restaurantID != s.RestaurantID {
		return utils.Forbidden("%s belongs to another restaurant", resource)
	}
	return nil
}

// CanProduceStatus reports whether role may move an order into target.
func CanProduceStatus(role models.Role, target models.OrderStatus) bool {
	for _, r := range statusProducers[target] {
		if r == role {
			return true
		}
	}
	return false
}
