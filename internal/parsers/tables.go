package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
)

var (
	diceHeaderRe = regexp.MustCompile(`^(\d*d\d+)\s*\|\s*(.+)$`)
	rollRowRe    = regexp.MustCompile(`^(\d+)(?:\s*[-–]\s*(\d+))?\s*\|\s*(.+)$`)
	ordinalRowRe = regexp.MustCompile(`(?i)^(\d+)(?:st|nd|rd|th)\s*\|\s*(.+)$`)
)

// ParseRandomTables finds pipe delimited tables embedded in rules text.
//
// Two layouts are recognised:
//
//	Name:                 d8 | Name
//	d8 | Result           1 | ...
//	1 | ...               2-3 | ...
//	2-3 | ...
//
// Rows with an ordinal first column ("1st | ...") are level tables; rows with
// no numeric roll keep RollMin/RollMax at zero.
func ParseRandomTables(text string) []dnd5e.RandomTable {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var tables []dnd5e.RandomTable

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		// Named table: "Name:" then a header row then rows.
		if strings.HasSuffix(line, ":") && i+2 < len(lines) && strings.Contains(lines[i+1], "|") {
			rows, next := collectRows(lines, i+2)
			if len(rows) > 0 {
				header := strings.TrimSpace(lines[i+1])
				table := dnd5e.RandomTable{
					Name:     strings.TrimSpace(strings.TrimRight(line, ": ")),
					DiceType: diceTypeOf(header),
					Entries:  rows,
				}
				tables = append(tables, table)
				i = next - 1
				continue
			}
		}

		// Headerless table: "d8 | Name" then rows.
		if m := diceHeaderRe.FindStringSubmatch(line); m != nil {
			rows, next := collectRows(lines, i+1)
			if len(rows) > 0 {
				tables = append(tables, dnd5e.RandomTable{
					Name:     strings.TrimSpace(m[2]),
					DiceType: m[1],
					Entries:  rows,
				})
				i = next - 1
			}
		}
	}
	return tables
}

func collectRows(lines []string, start int) ([]dnd5e.RandomTableEntry, int) {
	var rows []dnd5e.RandomTableEntry
	i := start
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || !strings.Contains(line, "|") {
			break
		}
		entry := dnd5e.RandomTableEntry{SortOrder: len(rows)}
		switch {
		case rollRowRe.MatchString(line):
			m := rollRowRe.FindStringSubmatch(line)
			entry.RollMin = rollValue(m[1])
			entry.RollMax = entry.RollMin
			if m[2] != "" {
				entry.RollMax = rollValue(m[2])
			}
			entry.Result = strings.TrimSpace(m[3])
		case ordinalRowRe.MatchString(line):
			m := ordinalRowRe.FindStringSubmatch(line)
			entry.RollMin, _ = strconv.Atoi(m[1])
			entry.RollMax = entry.RollMin
			entry.Result = strings.TrimSpace(m[2])
		default:
			entry.Result = line
		}
		rows = append(rows, entry)
	}
	return rows, i
}

// rollValue reads a table roll; "00" is 100 on percentile tables
func rollValue(s string) int {
	if s == "00" {
		return 100
	}
	n, _ := strconv.Atoi(s)
	return n
}

func diceTypeOf(header string) string {
	if m := diceHeaderRe.FindStringSubmatch(strings.TrimSpace(header)); m != nil {
		return m[1]
	}
	return ""
}
