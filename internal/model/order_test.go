package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestCanAdvance(t *testing.T) {
    all := []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled}

    legal := map[OrderStatus][]OrderStatus{
        StatusPending:   {StatusPreparing, StatusCancelled},
        StatusPreparing: {StatusReady, StatusCancelled},
        StatusReady:     {StatusDelivered},
        StatusDelivered: {},
        StatusCancelled: {},
    }

    for from, targets := range legal {
        allowed := make(map[OrderStatus]bool)
        for _, to := range targets {
            allowed[to] = true
        }
        for _, to := range all {
            got := from.CanAdvance(to)
            assert.Equalf(t, allowed[to], got, "%s -> %s", from, to)
        }
    }

    t.Run("no self transition", func(t *testing.T) {
        for _, s := range all {
            assert.Falsef(t, s.CanAdvance(s), "%s -> %s must be rejected", s, s)
        }
    })

    t.Run("no backwards transition", func(t *testing.T) {
        assert.False(t, StatusReady.CanAdvance(StatusPending))
        assert.False(t, StatusDelivered.CanAdvance(StatusReady))
        assert.False(t, StatusPreparing.CanAdvance(StatusPending))
    })
}

func TestIsActive(t *testing.T) {
    assert.True(t, StatusPending.IsActive())
    assert.True(t, StatusPreparing.IsActive())
    assert.True(t, StatusReady.IsActive())
    assert.False(t, StatusDelivered.IsActive())
    assert.False(t, StatusCancelled.IsActive())
}

func TestRank(t *testing.T) {
    // Rank must be strictly increasing along the happy path so merge
    // logic can prefer the furthest-advanced status.
    assert.Less(t, StatusPending.Rank(), StatusPreparing.Rank())
    assert.Less(t, StatusPreparing.Rank(), StatusReady.Rank())
    assert.Less(t, StatusReady.Rank(), StatusDelivered.Rank())

    // Terminal statuses share the top rank: a stale pipeline event can
    // never displace either of them.
    assert.Equal(t, StatusDelivered.Rank(), StatusCancelled.Rank())
    assert.Less(t, StatusReady.Rank(), StatusCancelled.Rank())

    // Unknown statuses rank below everything.
    assert.Equal(t, -1, OrderStatus("bogus").Rank())
}

func TestValidStatus(t *testing.T) {
    assert.True(t, ValidStatus(StatusPending))
    assert.True(t, ValidStatus(StatusCancelled))
    assert.False(t, ValidStatus(OrderStatus("paid")))
    assert.False(t, ValidStatus(OrderStatus("")))
}
