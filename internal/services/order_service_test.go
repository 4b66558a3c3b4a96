package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zakaz/internal/authz"
	"zakaz/internal/domain"
	"zakaz/internal/models"
	"zakaz/internal/repositories"
	"zakaz/internal/services"
)

var (
	ownerClaims    = &authz.Claims{Identity: "user-a", Roles: []string{authz.RoleUser}}
	strangerClaims = &authz.Claims{Identity: "user-b", Roles: []string{authz.RoleUser}}
	adminClaims    = &authz.Claims{Identity: "admin-1", Roles: []string{authz.RoleUser, authz.RoleAdmin}}
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrderService() *services.OrderService {
	return services.NewOrderService(repositories.NewMemoryOrderRepository(), nil)
}

// recordingEvents counts lifecycle notifications.
type recordingEvents struct {
	created, updated int
}

func (r *recordingEvents) OrderCreated(*models.Order)       { r.created++ }
func (r *recordingEvents) OrderStatusUpdated(*models.Order) { r.updated++ }

func TestOrderService_CreateComputesExactTotal(t *testing.T) {
	svc := newOrderService()

	order, err := svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "widget", Quantity: 2, Price: price("9.99")},
	})
	require.NoError(t, err)
	assert.Equal(t, "19.98", order.TotalAmount.String())
	assert.Equal(t, models.StatusCreated, order.Status)
	assert.Equal(t, "user-a", order.UserID)
	assert.Len(t, order.Items, 1)

	// Sums that lose precision in binary floating point stay exact here.
	order, err = svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "a", Quantity: 3, Price: price("0.10")},
		{Product: "b", Quantity: 1, Price: price("0.01")},
		{Product: "c", Quantity: 7, Price: price("1.43")},
	})
	require.NoError(t, err)
	assert.Equal(t, "10.32", order.TotalAmount.String())

	// Zero price is allowed.
	order, err = svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "freebie", Quantity: 5, Price: decimal.Zero},
	})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestOrderService_CreateValidation(t *testing.T) {
	svc := newOrderService()

	_, err := svc.Create(ownerClaims, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "widget", Quantity: 0, Price: price("1.00")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "widget", Quantity: 1, Price: price("-0.01")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "", Quantity: 1, Price: price("1.00")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(nil, []services.NewOrderItem{
		{Product: "widget", Quantity: 1, Price: price("1.00")},
	})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestOrderService_StateMachine(t *testing.T) {
	svc := newOrderService()

	create := func() *models.Order {
		order, err := svc.Create(ownerClaims, []services.NewOrderItem{
			{Product: "widget", Quantity: 1, Price: price("1.00")},
		})
		require.NoError(t, err)
		return order
	}

	// created -> in_progress -> done succeeds.
	order := create()
	updated, err := svc.UpdateStatus(ownerClaims, order.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	updated, err = svc.UpdateStatus(ownerClaims, order.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)

	// done is terminal.
	for _, next := range []string{"created", "in_progress", "done", "cancelled"} {
		_, err = svc.UpdateStatus(ownerClaims, order.ID, next)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "done -> %s", next)
	}

	// created -> done directly is illegal, and nothing is written.
	order = create()
	_, err = svc.UpdateStatus(ownerClaims, order.ID, "done")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	unchanged, err := svc.Get(ownerClaims, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, unchanged.Status)

	// in_progress -> created is illegal.
	_, err = svc.UpdateStatus(ownerClaims, order.ID, "in_progress")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ownerClaims, order.ID, "created")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Unrecognized status values are rejected before any lookup.
	_, err = svc.UpdateStatus(ownerClaims, order.ID, "shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Cancel follows the same machine.
	order = create()
	cancelled, err := svc.Cancel(ownerClaims, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	_, err = svc.Cancel(ownerClaims, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrderService_Ownership(t *testing.T) {
	svc := newOrderService()

	order, err := svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "widget", Quantity: 1, Price: price("1.00")},
	})
	require.NoError(t, err)

	// A stranger is denied regardless of order status.
	_, err = svc.Get(strangerClaims, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.UpdateStatus(strangerClaims, order.ID, "in_progress")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = svc.Cancel(strangerClaims, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	// Admin may read but not mutate someone else's order.
	got, err := svc.Get(adminClaims, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	_, err = svc.UpdateStatus(adminClaims, order.ID, "in_progress")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	// Absent orders are NotFound for everyone.
	_, err = svc.Get(strangerClaims, "missing-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.UpdateStatus(ownerClaims, "missing-id", "in_progress")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_ListPagination(t *testing.T) {
	svc := newOrderService()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		order, err := svc.Create(ownerClaims, []services.NewOrderItem{
			{Product: "widget", Quantity: 1, Price: price("1.00")},
		})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}
	// A foreign order must never show up in the owner's listing.
	_, err := svc.Create(strangerClaims, []services.NewOrderItem{
		{Product: "gadget", Quantity: 1, Price: price("2.00")},
	})
	require.NoError(t, err)

	// Newest first: page 2 of size 1 is the second most recent order.
	pageTwo, err := svc.List(ownerClaims, 2, 1)
	require.NoError(t, err)
	require.Len(t, pageTwo, 1)
	assert.Equal(t, ids[1], pageTwo[0].ID)

	all, err := svc.List(ownerClaims, 1, 20)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	// Out-of-range pages are empty, not an error.
	empty, err := svc.List(ownerClaims, 100, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Non-positive paging parameters are rejected.
	_, err = svc.List(ownerClaims, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.List(ownerClaims, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrderService_Events(t *testing.T) {
	rec := &recordingEvents{}
	svc := services.NewOrderService(repositories.NewMemoryOrderRepository(), rec)

	order, err := svc.Create(ownerClaims, []services.NewOrderItem{
		{Product: "widget", Quantity: 1, Price: price("1.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.created)

	_, err = svc.UpdateStatus(ownerClaims, order.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.updated)

	// Failed transitions emit nothing.
	_, err = svc.UpdateStatus(ownerClaims, order.ID, "created")
	assert.Error(t, err)
	assert.Equal(t, 1, rec.updated)
}
