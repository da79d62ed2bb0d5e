package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTogglePairRestoresSet проверяет, что двойной toggle возвращает набор к исходному виду.
func TestTogglePairRestoresSet(t *testing.T) {
	set := New(nil)
	require.True(t, set.Toggle("catering"))

	before := set.IDs()
	for _, id := range []string{"catering", "photography", "music"} {
		set.Toggle(id)
		set.Toggle(id)
		assert.Equal(t, before, set.IDs(), "toggle pair for %s", id)
	}
}

// TestToggleNotifiesOwner проверяет сигнал об изменении на каждую мутацию.
func TestToggleNotifiesOwner(t *testing.T) {
	calls := 0
	set := New(func() { calls++ })

	set.Toggle("catering")
	set.Toggle("photography")
	set.Toggle("catering")
	assert.Equal(t, 3, calls)

	assert.True(t, set.Clear())
	assert.Equal(t, 4, calls)

	assert.False(t, set.Clear(), "clearing an empty set is not a change")
	assert.Equal(t, 4, calls)
}

// TestToggleDisabled проверяет, что заблокированный набор не меняется.
func TestToggleDisabled(t *testing.T) {
	calls := 0
	set := New(func() { calls++ })
	set.Toggle("catering")
	set.SetDisabled(true)

	assert.False(t, set.Toggle("photography"))
	assert.False(t, set.Toggle("catering"))
	assert.False(t, set.Clear())
	assert.Equal(t, []string{"catering"}, set.IDs())
	assert.Equal(t, 1, calls)

	set.SetDisabled(false)
	assert.True(t, set.Toggle("photography"))
	assert.True(t, set.IsSelected("photography"))
}

func TestRetain(t *testing.T) {
	set := New(nil)
	set.Toggle("a")
	set.Toggle("b")

	removed := set.Retain(map[string]struct{}{"b": {}})

	assert.True(t, removed)
	assert.Equal(t, []string{"b"}, set.IDs())
	assert.False(t, set.Retain(map[string]struct{}{"b": {}}))
}

func TestToggleEmptyID(t *testing.T) {
	set := New(nil)
	assert.False(t, set.Toggle(""))
	assert.Equal(t, 0, set.Len())
}
