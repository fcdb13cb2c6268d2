package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RulesConfig enumerates the tunable rules constants. It is built once at
// startup and passed explicitly into the derivation pipeline and the
// resolvers; nothing reads settings from a global.
type RulesConfig struct {
	BaseDefense               int    // defense before ability, level and gear
	BaseInitiative            int    // initiative before agility
	BaseCritical              int    // unmodified critical threshold
	CriticalFloor             int    // threshold never drops below this
	LevelBonusCap             int    // level contribution to combat stats caps here
	ConcentrationManaDiscount int    // mana saved by casting with concentration
	HeavyArmorAgilityMax      int    // agility value ceiling under heavy armor
	BareHandsDamage           string // damage formula when no weapon is equipped
	BareHandsSkill            string // attack formula when no weapon is equipped
	ComboRoll                 bool   // roll attack and damage together
	DifficultyDisplay         string // who sees roll difficulties: all, gm, none
}

// DefaultRules returns the standard rules constants
func DefaultRules() *RulesConfig {
	return &RulesConfig{
		BaseDefense:               10,
		BaseInitiative:            0,
		BaseCritical:              20,
		CriticalFloor:             16,
		LevelBonusCap:             10,
		ConcentrationManaDiscount: 2,
		HeavyArmorAgilityMax:      12,
		BareHandsDamage:           "1d4",
		BareHandsSkill:            "1d20+@atc",
		ComboRoll:                 true,
		DifficultyDisplay:         "gm",
	}
}

// FamilyRules carries the per-archetype constants used by the derivation
// pipeline. The family is the class-like grouping of a profile.
type FamilyRules struct {
	HPBase        int  `yaml:"hp_base"`        // hit points gained per level before CON
	FortuneBonus  int  `yaml:"fortune_bonus"`  // added to the fortune pool
	RecoveryBonus int  `yaml:"recovery_bonus"` // added to the recovery pool
	Caster        bool `yaml:"caster"`         // family can hold a mana pool
}

// EvolvingDieRules keys the evolving-die ladder on character level
type EvolvingDieRules struct {
	Ladder    []int `yaml:"ladder"`     // die sizes, lowest band first
	BandWidth int   `yaml:"band_width"` // levels per band
}

// SizeFor returns the die size for the given level
func (e EvolvingDieRules) SizeFor(level int) int {
	if len(e.Ladder) == 0 {
		return 4
	}
	if e.BandWidth < 1 {
		return e.Ladder[0]
	}
	band := (level - 1) / e.BandWidth
	if band < 0 {
		band = 0
	}
	if band >= len(e.Ladder) {
		band = len(e.Ladder) - 1
	}
	return e.Ladder[band]
}

// RulesData holds the data tables the pipeline reads: archetype families
// and the evolving-die ladder. Balance numbers live here, not in code.
type RulesData struct {
	Families    map[string]FamilyRules `yaml:"families"`
	EvolvingDie EvolvingDieRules       `yaml:"evolving_die"`
}

// Family returns the rules for a family, falling back to a flat default
// for unknown or encounter archetypes.
func (d *RulesData) Family(name string) FamilyRules {
	if d != nil && d.Families != nil {
		if family, ok := d.Families[name]; ok {
			return family
		}
	}
	return FamilyRules{HPBase: 4}
}

// DefaultRulesData returns the built-in rules tables
func DefaultRulesData() *RulesData {
	return &RulesData{
		Families: map[string]FamilyRules{
			"warrior":    {HPBase: 5, RecoveryBonus: 2},
			"adventurer": {HPBase: 4, FortuneBonus: 1, RecoveryBonus: 1},
			"mystic":     {HPBase: 3, FortuneBonus: 2, Caster: true},
		},
		EvolvingDie: EvolvingDieRules{
			Ladder:    []int{4, 6, 8, 10, 12},
			BandWidth: 4,
		},
	}
}

// LoadRulesData reads rules tables from a YAML file, or returns the
// defaults when path is empty.
func LoadRulesData(path string) (*RulesData, error) {
	if path == "" {
		return DefaultRulesData(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules data: %w", err)
	}

	data := DefaultRulesData()
	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse rules data: %w", err)
	}
	return data, nil
}
