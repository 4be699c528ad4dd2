package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageName(t *testing.T) {
	tests := []struct {
		stage int
		want  string
	}{
		{1, "Order Placed"},
		{2, "Buyer Associated"},
		{3, "Processing"},
		{4, "Packed"},
		{5, "Shipped"},
		{6, "Out for Delivery"},
		{7, "Delivered"},
		{0, "0"},
		{8, "8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StageName(tt.stage))
	}
}

func TestOrderIsActive(t *testing.T) {
	o := &Order{CurrentStage: 1}
	assert.True(t, o.IsActive())

	o.CurrentStage = 6
	assert.True(t, o.IsActive())

	o.CurrentStage = 7
	assert.False(t, o.IsActive(), "delivered orders are not active")

	o.CurrentStage = 3
	o.IsDeleted = true
	assert.False(t, o.IsActive(), "deleted orders are not active")
}

func TestAddHistoryAppends(t *testing.T) {
	actor := "actor-1"
	o := &Order{ID: "order-1"}

	o.AddHistory("Order Placed", &actor, "Buyer One", "created by buyer")
	require.Len(t, o.History, 1)
	o.AddHistory("Seller Assigned", nil, "", "")
	require.Len(t, o.History, 2)

	assert.Equal(t, "Order Placed", o.History[0].Stage)
	assert.Equal(t, "Buyer One", o.History[0].ActorName)
	assert.Equal(t, "order-1", o.History[1].OrderID)
	assert.False(t, o.History[1].Timestamp.Before(o.History[0].Timestamp))
}
