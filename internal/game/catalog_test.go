package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	def, ok := c.ByID("c001")
	require.True(t, ok)
	assert.Equal(t, "Noob Trader", def.Name)
	assert.True(t, def.IsMinion())

	_, ok = c.ByID("c999")
	assert.False(t, ok)
}

func TestDefaultCatalogCardShape(t *testing.T) {
	for _, def := range DefaultCatalog().All() {
		if def.IsMinion() {
			require.NotNil(t, def.Health, "minion %s needs health", def.ID)
			assert.Positive(t, *def.Health, "minion %s", def.ID)
			assert.GreaterOrEqual(t, *def.Attack, 0, "minion %s", def.ID)
		} else {
			assert.True(t, def.HasAbility(AbilitySpell), "spell %s needs the spell tag", def.ID)
			assert.Nil(t, def.Health, "spell %s", def.ID)
		}
		assert.NotEmpty(t, def.Name, "card %s", def.ID)
	}
}

func TestHasAbility(t *testing.T) {
	c := DefaultCatalog()
	keyboard, _ := c.ByID("c006")
	assert.True(t, keyboard.HasAbility(AbilityTaunt))
	assert.False(t, keyboard.HasAbility(AbilityCharge))
}
