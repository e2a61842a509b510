// Package parsers turns compendium XML into dnd5e entities. Parsers are pure:
// they never touch storage and never resolve lookups.
package parsers

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// compendiumXML is the root element of every compendium file. The root name
// is not checked so fragments wrapped in other elements still decode.
type compendiumXML struct {
	Spells      []spellXML      `xml:"spell"`
	Classes     []classXML      `xml:"class"`
	Items       []itemXML       `xml:"item"`
	Monsters    []monsterXML    `xml:"monster"`
	Races       []raceXML       `xml:"race"`
	Feats       []featXML       `xml:"feat"`
	Backgrounds []backgroundXML `xml:"background"`
}

type rollXML struct {
	Description string `xml:"description,attr"`
	Level       string `xml:"level,attr"`
	Formula     string `xml:",chardata"`
}

type modifierXML struct {
	Category string `xml:"category,attr"`
	Text     string `xml:",chardata"`
}

type traitXML struct {
	Category  string        `xml:"category,attr"`
	Name      string        `xml:"name"`
	Text      []string      `xml:"text"`
	Attack    []string      `xml:"attack"`
	Recharge  string        `xml:"recharge"`
	Special   []string      `xml:"special"`
	Rolls     []rollXML     `xml:"roll"`
	Modifiers []modifierXML `xml:"modifier"`
}

type spellXML struct {
	Name         string    `xml:"name"`
	Level        string    `xml:"level"`
	School       string    `xml:"school"`
	Ritual       string    `xml:"ritual"`
	Time         string    `xml:"time"`
	Range        string    `xml:"range"`
	Components   string    `xml:"components"`
	Duration     string    `xml:"duration"`
	Classes      string    `xml:"classes"`
	Prerequisite string    `xml:"prerequisite"`
	Text         []string  `xml:"text"`
	Rolls        []rollXML `xml:"roll"`
}

type slotsXML struct {
	Optional string `xml:"optional,attr"`
	Value    string `xml:",chardata"`
}

type counterXML struct {
	Name     string `xml:"name"`
	Value    string `xml:"value"`
	Reset    string `xml:"reset"`
	Subclass string `xml:"subclass"`
}

type featureXML struct {
	Optional  string        `xml:"optional,attr"`
	Name      string        `xml:"name"`
	Text      []string      `xml:"text"`
	Special   []string      `xml:"special"`
	Modifiers []modifierXML `xml:"modifier"`
	Rolls     []rollXML     `xml:"roll"`
}

type autolevelXML struct {
	Level            int          `xml:"level,attr"`
	ScoreImprovement string       `xml:"scoreImprovement,attr"`
	Slots            *slotsXML    `xml:"slots"`
	Features         []featureXML `xml:"feature"`
	Counters         []counterXML `xml:"counter"`
}

type classXML struct {
	Name         string         `xml:"name"`
	HD           string         `xml:"hd"`
	Proficiency  string         `xml:"proficiency"`
	SpellAbility string         `xml:"spellAbility"`
	NumSkills    string         `xml:"numSkills"`
	Armor        string         `xml:"armor"`
	Weapons      string         `xml:"weapons"`
	Tools        string         `xml:"tools"`
	Wealth       string         `xml:"wealth"`
	Text         []string       `xml:"text"`
	Traits       []traitXML     `xml:"trait"`
	Autolevels   []autolevelXML `xml:"autolevel"`
}

type itemXML struct {
	Name      string        `xml:"name"`
	Type      string        `xml:"type"`
	Detail    string        `xml:"detail"`
	Magic     string        `xml:"magic"`
	Weight    string        `xml:"weight"`
	Value     string        `xml:"value"`
	Dmg1      string        `xml:"dmg1"`
	Dmg2      string        `xml:"dmg2"`
	DmgType   string        `xml:"dmgType"`
	Property  string        `xml:"property"`
	Range     string        `xml:"range"`
	AC        string        `xml:"ac"`
	Strength  string        `xml:"strength"`
	Stealth   string        `xml:"stealth"`
	Text      []string      `xml:"text"`
	Rolls     []rollXML     `xml:"roll"`
	Modifiers []modifierXML `xml:"modifier"`
}

type monsterXML struct {
	Name            string     `xml:"name"`
	Size            string     `xml:"size"`
	Type            string     `xml:"type"`
	Alignment       string     `xml:"alignment"`
	AC              string     `xml:"ac"`
	HP              string     `xml:"hp"`
	Speed           string     `xml:"speed"`
	Str             string     `xml:"str"`
	Dex             string     `xml:"dex"`
	Con             string     `xml:"con"`
	Int             string     `xml:"int"`
	Wis             string     `xml:"wis"`
	Cha             string     `xml:"cha"`
	Save            string     `xml:"save"`
	Skill           string     `xml:"skill"`
	Vulnerable      string     `xml:"vulnerable"`
	Resist          string     `xml:"resist"`
	Immune          string     `xml:"immune"`
	ConditionImmune string     `xml:"conditionImmune"`
	Senses          string     `xml:"senses"`
	Passive         string     `xml:"passive"`
	Languages       string     `xml:"languages"`
	CR              string     `xml:"cr"`
	Spells          string     `xml:"spells"`
	Slots           string     `xml:"slots"`
	Description     string     `xml:"description"`
	Environment     string     `xml:"environment"`
	Traits          []traitXML `xml:"trait"`
	Actions         []traitXML `xml:"action"`
	Reactions       []traitXML `xml:"reaction"`
	Legendary       []traitXML `xml:"legendary"`
}

type raceXML struct {
	Name         string        `xml:"name"`
	Size         string        `xml:"size"`
	Speed        string        `xml:"speed"`
	Ability      string        `xml:"ability"`
	Proficiency  []string      `xml:"proficiency"`
	Weapons      string        `xml:"weapons"`
	Armor        string        `xml:"armor"`
	SpellAbility string        `xml:"spellAbility"`
	Resist       []string      `xml:"resist"`
	Traits       []traitXML    `xml:"trait"`
	Modifiers    []modifierXML `xml:"modifier"`
}

type featXML struct {
	Name         string        `xml:"name"`
	Prerequisite string        `xml:"prerequisite"`
	Proficiency  []string      `xml:"proficiency"`
	Text         []string      `xml:"text"`
	Modifiers    []modifierXML `xml:"modifier"`
	Rolls        []rollXML     `xml:"roll"`
}

type backgroundXML struct {
	Name        string     `xml:"name"`
	Proficiency string     `xml:"proficiency"`
	Traits      []traitXML `xml:"trait"`
}

func decodeCompendium(r io.Reader) (*compendiumXML, error) {
	doc := &compendiumXML{}
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed compendium xml")
	}
	return doc, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func isYes(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "YES") || s == "1"
}
