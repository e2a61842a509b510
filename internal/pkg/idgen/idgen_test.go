package idgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-compendium/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	id := idgen.NewUUID("char").Generate()
	assert.True(t, strings.HasPrefix(id, "char_"))
	assert.Len(t, id, len("char_")+36)
	assert.NotEqual(t, id, idgen.NewUUID("char").Generate())

	assert.Len(t, idgen.NewUUID("").Generate(), 36)
}

func TestShortUUIDGenerator(t *testing.T) {
	id := idgen.ShortUUIDGenerator{}.Generate()
	assert.Len(t, id, 8)
	assert.NotContains(t, id, "-")
}

func TestSequentialGenerator(t *testing.T) {
	g := idgen.NewSequential("roll")
	assert.Equal(t, "roll_1", g.Generate())
	assert.Equal(t, "roll_2", g.Generate())
	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}
