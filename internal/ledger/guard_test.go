package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunny0223day/accountingbot/internal/models"
)

func orderWithStatus(status models.OrderStatus) *models.Order {
	return &models.Order{ID: 1, CreatorID: "creator", Status: status}
}

func TestCanAddItem(t *testing.T) {
	assert.NoError(t, CanAddItem(orderWithStatus(models.StatusOpen)))
	assert.ErrorIs(t, CanAddItem(orderWithStatus(models.StatusLocked)), ErrOrderNotEditable)
	assert.ErrorIs(t, CanAddItem(orderWithStatus(models.StatusCancelled)), ErrOrderNotEditable)
}

func TestCanSetDiscount(t *testing.T) {
	assert.NoError(t, CanSetDiscount(orderWithStatus(models.StatusOpen)))
	assert.ErrorIs(t, CanSetDiscount(orderWithStatus(models.StatusLocked)), ErrOrderNotEditable)
	assert.ErrorIs(t, CanSetDiscount(orderWithStatus(models.StatusCancelled)), ErrOrderNotEditable)
}

func TestCanSetAdjustment(t *testing.T) {
	assert.NoError(t, CanSetAdjustment(orderWithStatus(models.StatusOpen), "creator"))
	assert.ErrorIs(t, CanSetAdjustment(orderWithStatus(models.StatusOpen), "somebody"), ErrNotAuthorized)
	assert.ErrorIs(t, CanSetAdjustment(orderWithStatus(models.StatusLocked), "creator"), ErrOrderNotEditable)
	assert.ErrorIs(t, CanSetAdjustment(orderWithStatus(models.StatusCancelled), "creator"), ErrOrderNotEditable)
}

func TestCanLock(t *testing.T) {
	assert.NoError(t, CanLock(orderWithStatus(models.StatusOpen), "creator"))
	assert.ErrorIs(t, CanLock(orderWithStatus(models.StatusOpen), "somebody"), ErrNotAuthorized)
	assert.ErrorIs(t, CanLock(orderWithStatus(models.StatusLocked), "creator"), ErrInvalidTransition)
	assert.ErrorIs(t, CanLock(orderWithStatus(models.StatusCancelled), "creator"), ErrAlreadyCancelled)
	// Terminal state wins over the actor check.
	assert.ErrorIs(t, CanLock(orderWithStatus(models.StatusCancelled), "somebody"), ErrAlreadyCancelled)
}

func TestCanUnlock(t *testing.T) {
	assert.NoError(t, CanUnlock(orderWithStatus(models.StatusLocked), "creator"))
	// Resetting an open order to open is allowed and harmless.
	assert.NoError(t, CanUnlock(orderWithStatus(models.StatusOpen), "creator"))
	assert.ErrorIs(t, CanUnlock(orderWithStatus(models.StatusLocked), "somebody"), ErrNotAuthorized)
	assert.ErrorIs(t, CanUnlock(orderWithStatus(models.StatusCancelled), "creator"), ErrAlreadyCancelled)
}

func TestCanCancel(t *testing.T) {
	assert.NoError(t, CanCancel(orderWithStatus(models.StatusOpen), "creator"))
	assert.NoError(t, CanCancel(orderWithStatus(models.StatusLocked), "creator"))
	assert.ErrorIs(t, CanCancel(orderWithStatus(models.StatusOpen), "somebody"), ErrNotAuthorized)
	assert.ErrorIs(t, CanCancel(orderWithStatus(models.StatusCancelled), "creator"), ErrAlreadyCancelled)
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsNotFound(&NotFoundError{OrderID: 7}))
	assert.True(t, IsNotFound(ErrNoSuchParticipant))
	assert.False(t, IsNotFound(ErrNotAuthorized))

	for _, err := range []error{
		ErrOrderNotEditable, ErrNotAuthorized, ErrAlreadyCancelled,
		ErrInvalidTransition, ErrInvalidItem, ErrInvalidDiscount,
		ErrOrderNotFound, ErrNoSuchParticipant,
	} {
		assert.True(t, IsClientError(err), "%v", err)
	}
	assert.False(t, IsClientError(assert.AnError))
}
