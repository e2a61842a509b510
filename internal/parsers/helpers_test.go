package parsers_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/parsers"
)

type HelpersTestSuite struct {
	suite.Suite
}

func (s *HelpersTestSuite) TestBookCode() {
	s.Equal("PHB", parsers.BookCode("Player's Handbook (2014)"))
	s.Equal("XGE", parsers.BookCode("xanathar's guide to everything"))
	s.Equal("UTS", parsers.BookCode("Unknown Tome of Stuff"))
}

func (s *HelpersTestSuite) TestParseSourceCitations() {
	testCases := []struct {
		name string
		text string
		want []dnd5e.SourceCitation
	}{
		{
			name: "multiple books",
			text: "Some text.\n\nSource: Player's Handbook (2014) p. 241, Xanathar's Guide to Everything p. 5",
			want: []dnd5e.SourceCitation{{Code: "PHB", Pages: "241"}, {Code: "XGE", Pages: "5"}},
		},
		{
			name: "page range",
			text: "Source: Dungeon Master's Guide p. 140-141",
			want: []dnd5e.SourceCitation{{Code: "DMG", Pages: "140-141"}},
		},
		{
			name: "no page",
			text: "Source: Basic Rules",
			want: []dnd5e.SourceCitation{{Code: "BR"}},
		},
		{
			name: "no source block",
			text: "Just a description.",
		},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if diff := cmp.Diff(tc.want, parsers.ParseSourceCitations(tc.text)); diff != "" {
				s.Failf("citations mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
	s.Equal("Some text.", parsers.StripSourceCitations(testCases[0].text))
}

func (s *HelpersTestSuite) TestParseCharges() {
	c := parsers.ParseCharges("This wand has 7 charges. The wand regains 1d6 + 1 expended charges daily at dawn.")
	s.Require().NotNil(c.Max)
	s.Equal(7, *c.Max)
	s.Equal("1d6+1", c.Formula)
	s.Equal(dnd5e.ResetDawn, c.Timing)

	s.Equal(parsers.Charges{}, parsers.ParseCharges("A plain stick."))
}

func (s *HelpersTestSuite) TestParseRestTiming() {
	s.Equal(dnd5e.ResetShortRest, parsers.ParseRestTiming("until you finish a short or long rest"))
	s.Equal(dnd5e.ResetLongRest, parsers.ParseRestTiming("once per long rest"))
	s.Equal(dnd5e.ResetDawn, parsers.ParseRestTiming("It regains all charges at dawn."))
	s.Empty(parsers.ParseRestTiming("at will"))
}

func (s *HelpersTestSuite) TestParseRandomTables() {
	s.Run("named table", func() {
		tables := parsers.ParseRandomTables("Personality Trait:\nd8 | Personality Trait\n1 | I idolize a hero.\n2 | I can find common ground.")
		s.Equal([]dnd5e.RandomTable{{
			Name:     "Personality Trait",
			DiceType: "d8",
			Entries: []dnd5e.RandomTableEntry{
				{RollMin: 1, RollMax: 1, Result: "I idolize a hero."},
				{RollMin: 2, RollMax: 2, Result: "I can find common ground.", SortOrder: 1},
			},
		}}, tables)
	})

	s.Run("percentile table", func() {
		tables := parsers.ParseRandomTables("d100 | Effect\n01-50 | Nothing happens\n51-00 | Boom")
		s.Require().Len(tables, 1)
		s.Equal("Effect", tables[0].Name)
		s.Equal(1, tables[0].Entries[0].RollMin)
		s.Equal(100, tables[0].Entries[1].RollMax)
	})

	s.Run("level table", func() {
		tables := parsers.ParseRandomTables("d4 | Bonus\n1st | +1\n2nd | +2")
		s.Require().Len(tables, 1)
		s.Equal(2, tables[0].Entries[1].RollMin)
		s.Equal("+2", tables[0].Entries[1].Result)
	})

	s.Nil(parsers.ParseRandomTables("No tables here."))
}

func (s *HelpersTestSuite) TestWordToNumber() {
	s.Equal(3, parsers.WordToNumber("three"))
	s.Equal(12, parsers.WordToNumber(" 12 "))
	s.Equal(2, parsers.WordToNumber("Twice"))
	s.Zero(parsers.WordToNumber("many"))
}

func (s *HelpersTestSuite) TestInferProficiencyType() {
	testCases := map[string]string{
		"Strength":       dnd5e.ProficiencyTypeSavingThrow,
		"Athletics":      dnd5e.ProficiencyTypeSkill,
		"Thieves' Tools": dnd5e.ProficiencyTypeTool,
		"Shields":        dnd5e.ProficiencyTypeArmor,
		"Longsword":      dnd5e.ProficiencyTypeWeapon,
	}
	for name, want := range testCases {
		s.Run(name, func() {
			s.Equal(want, parsers.InferProficiencyType(name))
		})
	}
}

func (s *HelpersTestSuite) TestExtractLanguages() {
	testCases := []struct {
		name string
		text string
		want []dnd5e.LanguageGrant
	}{
		{
			name: "multi word language",
			text: "You can speak, read, and write Common and Giant Eagle.",
			want: []dnd5e.LanguageGrant{{Name: "Common"}, {Name: "Giant Eagle"}},
		},
		{
			name: "counted choice",
			text: "You can read and write two languages of your choice.",
			want: []dnd5e.LanguageGrant{{IsChoice: true, Quantity: 2}},
		},
		{
			name: "only the first sentence counts",
			text: "You speak Draconic. Your ancestors spoke Infernal.",
			want: []dnd5e.LanguageGrant{{Name: "Draconic"}},
		},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if diff := cmp.Diff(tc.want, parsers.ExtractLanguages(tc.text)); diff != "" {
				s.Failf("languages mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
}

func TestHelpersSuite(t *testing.T) {
	suite.Run(t, new(HelpersTestSuite))
}
