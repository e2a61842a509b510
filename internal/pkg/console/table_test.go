package console_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-compendium/internal/pkg/console"
)

func TestTableRender(t *testing.T) {
	table := console.NewTable("Import summary", "Type", "Success", "Failed")
	table.AddRow("spells", "120", "0")
	table.AddRow("monsters", "7")

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Import summary")
	assert.Contains(t, lines[1], "Type")
	assert.Contains(t, lines[1], "Failed")
	assert.Contains(t, lines[3], "spells")
	assert.Contains(t, lines[4], "monsters")
}

func TestTableRenderTitleOnly(t *testing.T) {
	table := &console.Table{Title: "Nothing"}
	assert.Equal(t, 1, strings.Count(table.Render(), "\n"))
}
