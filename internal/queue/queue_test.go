package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucaLeukert/toastd/internal/model"
	"github.com/LucaLeukert/toastd/internal/registry"
)

func TestManager_Enqueue_VisibleCapacity(t *testing.T) {
	t.Run("top lane prepends newest near the edge", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 3, MaxQueue: 5, DropPolicy: model.DropOldest})

		for _, id := range []string{"a", "b", "c"} {
			res := m.Enqueue(addToast(reg, id, model.EdgeTop))
			assert.Equal(t, StatusInserted, res.Status)
			assert.Equal(t, PlacementNear, res.Placement)
		}

		assert.Equal(t, []string{"c", "b", "a"}, m.VisibleIDs(model.EdgeTop))
		require.NoError(t, m.Validate())
	})

	t.Run("bottom lane appends newest near the edge", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 3, MaxQueue: 5, DropPolicy: model.DropOldest})

		for _, id := range []string{"a", "b", "c"} {
			m.Enqueue(addToast(reg, id, model.EdgeBottom))
		}

		assert.Equal(t, []string{"a", "b", "c"}, m.VisibleIDs(model.EdgeBottom))
		require.NoError(t, m.Validate())
	})

	t.Run("overflow lands in pending in call order", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 2, MaxQueue: 5, DropPolicy: model.DropOldest})

		for i := 0; i < 5; i++ {
			m.Enqueue(addToast(reg, fmt.Sprintf("t%d", i), model.EdgeTop))
		}

		assert.Len(t, m.VisibleIDs(model.EdgeTop), 2)
		pending := m.PendingRecords(model.EdgeTop)
		require.Len(t, pending, 3)
		assert.Equal(t, "t2", pending[0].ID)
		assert.Equal(t, "t3", pending[1].ID)
		assert.Equal(t, "t4", pending[2].ID)
		require.NoError(t, m.Validate())
	})

	t.Run("edges are independent", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 5, DropPolicy: model.DropOldest})

		resTop := m.Enqueue(addToast(reg, "top-1", model.EdgeTop))
		resBottom := m.Enqueue(addToast(reg, "bottom-1", model.EdgeBottom))

		assert.Equal(t, StatusInserted, resTop.Status)
		assert.Equal(t, StatusInserted, resBottom.Status)
		require.NoError(t, m.Validate())
	})
}

func TestManager_Enqueue_QueuingDisabled(t *testing.T) {
	m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 0, DropPolicy: model.DropOldest})

	m.Enqueue(addToast(reg, "a", model.EdgeTop))
	res := m.Enqueue(addToast(reg, "b", model.EdgeTop))

	assert.Equal(t, StatusDropped, res.Status)
	require.NotNil(t, res.Evicted)
	assert.Equal(t, "b", res.Evicted.ID)
	assert.False(t, reg.Has("b"), "dropped record must leave the registry")
	require.NoError(t, m.Validate())
}

func TestManager_Enqueue_DropPolicy(t *testing.T) {
	t.Run("oldest evicts the pending front", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 2, DropPolicy: model.DropOldest})

		m.Enqueue(addToast(reg, "a", model.EdgeTop)) // visible
		m.Enqueue(addToast(reg, "b", model.EdgeTop)) // pending
		m.Enqueue(addToast(reg, "c", model.EdgeTop)) // pending
		res := m.Enqueue(addToast(reg, "d", model.EdgeTop))

		assert.Equal(t, StatusQueued, res.Status)
		require.NotNil(t, res.Evicted)
		assert.Equal(t, "b", res.Evicted.ID)
		assert.False(t, reg.Has("b"))

		pending := m.PendingRecords(model.EdgeTop)
		require.Len(t, pending, 2)
		assert.Equal(t, "c", pending[0].ID)
		assert.Equal(t, "d", pending[1].ID)
		require.NoError(t, m.Validate())
	})

	t.Run("newest rejects the incoming record", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 2, DropPolicy: model.DropNewest})

		m.Enqueue(addToast(reg, "a", model.EdgeTop))
		m.Enqueue(addToast(reg, "b", model.EdgeTop))
		m.Enqueue(addToast(reg, "c", model.EdgeTop))
		res := m.Enqueue(addToast(reg, "d", model.EdgeTop))

		assert.Equal(t, StatusDropped, res.Status)
		require.NotNil(t, res.Evicted)
		assert.Equal(t, "d", res.Evicted.ID)
		assert.False(t, reg.Has("d"))

		// existing pending untouched
		pending := m.PendingRecords(model.EdgeTop)
		require.Len(t, pending, 2)
		assert.Equal(t, "b", pending[0].ID)
		assert.Equal(t, "c", pending[1].ID)
		require.NoError(t, m.Validate())
	})
}

func TestManager_DismissTarget_ByID(t *testing.T) {
	m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 5, DropPolicy: model.DropOldest})
	m.Enqueue(addToast(reg, "vis", model.EdgeTop))
	m.Enqueue(addToast(reg, "pend", model.EdgeTop))

	t.Run("visible match", func(t *testing.T) {
		tgt := m.DismissTarget("vis")
		assert.Equal(t, TargetVisible, tgt.Kind)
		assert.Equal(t, "vis", tgt.ID)
		// visible matches are not removed until the presenter confirms
		assert.True(t, m.IsVisible("vis"))
	})

	t.Run("pending match is removed immediately", func(t *testing.T) {
		tgt := m.DismissTarget("pend")
		assert.Equal(t, TargetPending, tgt.Kind)
		require.NotNil(t, tgt.Record)
		assert.Equal(t, "pend", tgt.Record.ID)
		assert.False(t, reg.Has("pend"))
		assert.Equal(t, 0, m.PendingLen(model.EdgeTop))
		require.NoError(t, m.Validate())
	})

	t.Run("unknown id", func(t *testing.T) {
		tgt := m.DismissTarget("nope")
		assert.Equal(t, TargetNone, tgt.Kind)
	})
}

func TestManager_DismissTarget_TieBreak(t *testing.T) {
	limits := Limits{MaxVisible: 2, MaxQueue: 5, DropPolicy: model.DropOldest}

	t.Run("prefers oldest visible on top", func(t *testing.T) {
		m, reg := newTestManager(limits)
		m.Enqueue(addToast(reg, "top-old", model.EdgeTop))
		m.Enqueue(addToast(reg, "top-new", model.EdgeTop))
		m.Enqueue(addToast(reg, "bottom-1", model.EdgeBottom))

		tgt := m.DismissTarget("")
		assert.Equal(t, TargetVisible, tgt.Kind)
		assert.Equal(t, "top-old", tgt.ID)
	})

	t.Run("falls back to newest visible on bottom", func(t *testing.T) {
		m, reg := newTestManager(limits)
		m.Enqueue(addToast(reg, "bottom-old", model.EdgeBottom))
		m.Enqueue(addToast(reg, "bottom-new", model.EdgeBottom))

		tgt := m.DismissTarget("")
		assert.Equal(t, TargetVisible, tgt.Kind)
		assert.Equal(t, "bottom-new", tgt.ID)
	})

	t.Run("falls back to combined pending, top first", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 5, DropPolicy: model.DropOldest})
		// fill visible slots so the rest queues, then clear visible without
		// promotion to leave only pending records
		m.Enqueue(addToast(reg, "top-vis", model.EdgeTop))
		m.Enqueue(addToast(reg, "top-pend", model.EdgeTop))
		m.Enqueue(addToast(reg, "bottom-vis", model.EdgeBottom))
		m.Enqueue(addToast(reg, "bottom-pend", model.EdgeBottom))
		m.CompleteVisibleDismiss("top-vis", false)
		m.CompleteVisibleDismiss("bottom-vis", false)

		tgt := m.DismissTarget("")
		assert.Equal(t, TargetPending, tgt.Kind)
		assert.Equal(t, "top-pend", tgt.ID)
		require.NoError(t, m.Validate())
	})

	t.Run("empty system", func(t *testing.T) {
		m, _ := newTestManager(limits)
		tgt := m.DismissTarget("")
		assert.Equal(t, TargetNone, tgt.Kind)
	})
}

func TestManager_CompleteVisibleDismiss(t *testing.T) {
	t.Run("promotes pending front to far edge on top", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 2, MaxQueue: 5, DropPolicy: model.DropOldest})
		m.Enqueue(addToast(reg, "a", model.EdgeTop))
		m.Enqueue(addToast(reg, "b", model.EdgeTop))
		m.Enqueue(addToast(reg, "p1", model.EdgeTop))
		m.Enqueue(addToast(reg, "p2", model.EdgeTop))

		removed, promoted := m.CompleteVisibleDismiss("a", true)
		require.NotNil(t, removed)
		assert.Equal(t, "a", removed.ID)
		assert.False(t, reg.Has("a"))

		require.NotNil(t, promoted)
		assert.Equal(t, "p1", promoted.Record.ID)
		assert.Equal(t, model.EdgeTop, promoted.Edge)
		assert.Equal(t, PlacementFar, promoted.Placement)

		// top prepends near the edge, so the promoted toast lands at the end
		assert.Equal(t, []string{"b", "p1"}, m.VisibleIDs(model.EdgeTop))
		assert.Equal(t, 1, m.PendingLen(model.EdgeTop))
		require.NoError(t, m.Validate())
	})

	t.Run("promotes to front on bottom", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 2, MaxQueue: 5, DropPolicy: model.DropOldest})
		m.Enqueue(addToast(reg, "a", model.EdgeBottom))
		m.Enqueue(addToast(reg, "b", model.EdgeBottom))
		m.Enqueue(addToast(reg, "p1", model.EdgeBottom))

		_, promoted := m.CompleteVisibleDismiss("b", true)
		require.NotNil(t, promoted)
		assert.Equal(t, []string{"p1", "a"}, m.VisibleIDs(model.EdgeBottom))
		require.NoError(t, m.Validate())
	})

	t.Run("no promotion when disallowed", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 5, DropPolicy: model.DropOldest})
		m.Enqueue(addToast(reg, "a", model.EdgeTop))
		m.Enqueue(addToast(reg, "p1", model.EdgeTop))

		removed, promoted := m.CompleteVisibleDismiss("a", false)
		require.NotNil(t, removed)
		assert.Nil(t, promoted)
		assert.Empty(t, m.VisibleIDs(model.EdgeTop))
		assert.Equal(t, 1, m.PendingLen(model.EdgeTop))
		require.NoError(t, m.Validate())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		m, _ := newTestManager(Limits{MaxVisible: 1, MaxQueue: 5, DropPolicy: model.DropOldest})
		removed, promoted := m.CompleteVisibleDismiss("nope", true)
		assert.Nil(t, removed)
		assert.Nil(t, promoted)
	})
}

func TestManager_DrainPending(t *testing.T) {
	m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 5, DropPolicy: model.DropOldest})
	m.Enqueue(addToast(reg, "top-vis", model.EdgeTop))
	m.Enqueue(addToast(reg, "top-p1", model.EdgeTop))
	m.Enqueue(addToast(reg, "top-p2", model.EdgeTop))
	m.Enqueue(addToast(reg, "bottom-vis", model.EdgeBottom))
	m.Enqueue(addToast(reg, "bottom-p1", model.EdgeBottom))

	drained := m.DrainPending()
	require.Len(t, drained, 3)
	assert.Equal(t, "top-p1", drained[0].ID)
	assert.Equal(t, "top-p2", drained[1].ID)
	assert.Equal(t, "bottom-p1", drained[2].ID)

	// visible membership untouched
	assert.True(t, m.IsVisible("top-vis"))
	assert.True(t, m.IsVisible("bottom-vis"))
	assert.Equal(t, 0, m.PendingLen(model.EdgeTop))
	assert.Equal(t, 0, m.PendingLen(model.EdgeBottom))
	require.NoError(t, m.Validate())
}

func TestManager_Reconfigure(t *testing.T) {
	t.Run("trims pending with oldest policy", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 4, DropPolicy: model.DropOldest})
		m.Enqueue(addToast(reg, "vis", model.EdgeTop))
		for i := 0; i < 4; i++ {
			m.Enqueue(addToast(reg, fmt.Sprintf("p%d", i), model.EdgeTop))
		}

		evicted := m.Reconfigure(Limits{MaxVisible: 1, MaxQueue: 2, DropPolicy: model.DropOldest})
		require.Len(t, evicted, 2)
		assert.Equal(t, "p0", evicted[0].ID)
		assert.Equal(t, "p1", evicted[1].ID)
		assert.False(t, reg.Has("p0"))

		pending := m.PendingRecords(model.EdgeTop)
		require.Len(t, pending, 2)
		assert.Equal(t, "p2", pending[0].ID)
		require.NoError(t, m.Validate())
	})

	t.Run("trims pending with newest policy", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 1, MaxQueue: 3, DropPolicy: model.DropOldest})
		m.Enqueue(addToast(reg, "vis", model.EdgeTop))
		for i := 0; i < 3; i++ {
			m.Enqueue(addToast(reg, fmt.Sprintf("p%d", i), model.EdgeTop))
		}

		evicted := m.Reconfigure(Limits{MaxVisible: 1, MaxQueue: 1, DropPolicy: model.DropNewest})
		require.Len(t, evicted, 2)
		assert.Equal(t, "p2", evicted[0].ID)
		assert.Equal(t, "p1", evicted[1].ID)

		pending := m.PendingRecords(model.EdgeTop)
		require.Len(t, pending, 1)
		assert.Equal(t, "p0", pending[0].ID)
		require.NoError(t, m.Validate())
	})

	t.Run("does not touch visible membership", func(t *testing.T) {
		m, reg := newTestManager(Limits{MaxVisible: 3, MaxQueue: 2, DropPolicy: model.DropOldest})
		for _, id := range []string{"a", "b", "c"} {
			m.Enqueue(addToast(reg, id, model.EdgeTop))
		}

		evicted := m.Reconfigure(Limits{MaxVisible: 1, MaxQueue: 2, DropPolicy: model.DropOldest})
		assert.Empty(t, evicted)
		// already-visible toasts stay until they age out; only new enqueues
		// respect the lower limit
		assert.Len(t, m.VisibleIDs(model.EdgeTop), 3)
		assert.True(t, m.IsVisible("a"))

		res := m.Enqueue(addToast(reg, "d", model.EdgeTop))
		assert.Equal(t, StatusQueued, res.Status)
	})
}

// Helpers

func newTestManager(limits Limits) (*Manager, *registry.Registry) {
	reg := registry.New()
	return NewManager(reg, limits), reg
}

func addToast(reg *registry.Registry, id string, edge model.Edge) *model.Toast {
	t := &model.Toast{ID: id, Message: "msg " + id, Variant: model.VariantInfo, Edge: edge}
	reg.Add(t, nil)
	return t
}
