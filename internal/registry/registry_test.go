package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucaLeukert/toastd/internal/model"
)

func TestRegistry_AddGet(t *testing.T) {
	r := New()
	toast := &model.Toast{ID: "t1", Message: "hello"}
	r.Add(toast, nil)

	assert.Same(t, toast, r.Get("t1"))
	assert.True(t, r.Has("t1"))
	assert.Equal(t, 1, r.Len())
	assert.Nil(t, r.Get("nope"))
}

func TestRegistry_Actions(t *testing.T) {
	t.Run("handler stored with the record", func(t *testing.T) {
		r := New()
		called := false
		r.Add(&model.Toast{ID: "t1"}, func(model.Snapshot) { called = true })

		h := r.Action("t1")
		require.NotNil(t, h)
		h(model.Snapshot{})
		assert.True(t, called)
	})

	t.Run("nil handler clears", func(t *testing.T) {
		r := New()
		r.Add(&model.Toast{ID: "t1"}, func(model.Snapshot) {})

		r.SetAction("t1", nil)
		assert.Nil(t, r.Action("t1"))
	})

	t.Run("set on unknown id is a no-op", func(t *testing.T) {
		r := New()
		r.SetAction("nope", func(model.Snapshot) {})
		assert.Nil(t, r.Action("nope"))
	})
}

func TestRegistry_Remove(t *testing.T) {
	r := New()
	toast := &model.Toast{ID: "t1"}
	r.Add(toast, func(model.Snapshot) {})

	removed := r.Remove("t1")
	assert.Same(t, toast, removed)
	assert.False(t, r.Has("t1"))
	assert.Nil(t, r.Action("t1"), "handler lifetime is tied to the record")
	assert.Equal(t, 0, r.Len())

	assert.Nil(t, r.Remove("t1"))
}
