package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// Regex for dice notation like "2d6", "1d20", "1d8+2", "d12-1"
var diceNotationRegex = regexp.MustCompile(`^(\d*)d(\d+)(?:([+-])(\d+))?$`)

const (
	maxDiceCount = 100
	maxDieSize   = 1000
)

// Notation is a parsed NdM[+K] expression
type Notation struct {
	Count    int
	Size     int
	Modifier int
}

// ParseNotation parses dice notation. A missing count means one die.
func ParseNotation(notation string) (Notation, error) {
	matches := diceNotationRegex.FindStringSubmatch(strings.ToLower(strings.ReplaceAll(notation, " ", "")))
	if matches == nil {
		return Notation{}, errors.InvalidArgumentf("invalid dice notation: %s (expected format: XdY)", notation)
	}

	n := Notation{Count: 1}
	if matches[1] != "" {
		count, err := strconv.Atoi(matches[1])
		if err != nil {
			return Notation{}, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
		}
		n.Count = count
	}

	size, err := strconv.Atoi(matches[2])
	if err != nil {
		return Notation{}, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}
	n.Size = size

	if matches[4] != "" {
		mod, err := strconv.Atoi(matches[4])
		if err != nil {
			return Notation{}, errors.InvalidArgumentf("invalid modifier in notation: %s", notation)
		}
		if matches[3] == "-" {
			mod = -mod
		}
		n.Modifier = mod
	}

	if n.Count <= 0 || n.Size <= 0 {
		return Notation{}, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}
	if n.Count > maxDiceCount || n.Size > maxDieSize {
		return Notation{}, errors.InvalidArgumentf("too many dice or sides: %s", notation)
	}

	return n, nil
}

// String formats the notation back to NdM[+K]
func (n Notation) String() string {
	switch {
	case n.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Size, n.Modifier)
	case n.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", n.Count, n.Size, n.Modifier)
	default:
		return fmt.Sprintf("%dd%d", n.Count, n.Size)
	}
}
