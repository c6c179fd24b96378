/*
Package badges models the profile badge flags. Each set is a fixed, ordered
list of named booleans; on the wire it is a JSON array of 0/1 integers whose
length must match the set exactly.
*/
package badges

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SpecialCount and PrideCount are the wire lengths of the two sets.
const (
	SpecialCount = 6
	PrideCount   = 25
)

// Special holds the staff and community badges.
type Special struct {
	FiguraDev     bool
	FiguraMod     bool
	ContestWinner bool
	Supporter     bool
	Translator    bool
	TextureArtist bool
}

// Pride holds the pride flag badges.
type Pride struct {
	Agender      bool
	Aroace       bool
	Aromantic    bool
	Asexual      bool
	Bigender     bool
	Bisexual     bool
	Demiboy      bool
	Demigender   bool
	Demigirl     bool
	Demiromantic bool
	Demisexual   bool
	Disabled     bool
	Finsexual    bool
	Gay          bool
	Genderfae    bool
	Genderfluid  bool
	Genderqueer  bool
	Intersex     bool
	Lesbian      bool
	NonBinary    bool
	Pansexual    bool
	Plural       bool
	Poly         bool
	PrideFlag    bool
	Trans        bool
}

// Badges is the pair carried by profiles and limits.
type Badges struct {
	Special Special `json:"special" yaml:"special"`
	Pride   Pride   `json:"pride" yaml:"pride"`
}

// flags returns pointers to the fields in wire order.
func (s *Special) flags() []*bool {
	return []*bool{
		&s.FiguraDev,
		&s.FiguraMod,
		&s.ContestWinner,
		&s.Supporter,
		&s.Translator,
		&s.TextureArtist,
	}
}

func (p *Pride) flags() []*bool {
	return []*bool{
		&p.Agender, &p.Aroace, &p.Aromantic, &p.Asexual, &p.Bigender,
		&p.Bisexual, &p.Demiboy, &p.Demigender, &p.Demigirl, &p.Demiromantic,
		&p.Demisexual, &p.Disabled, &p.Finsexual, &p.Gay, &p.Genderfae,
		&p.Genderfluid, &p.Genderqueer, &p.Intersex, &p.Lesbian, &p.NonBinary,
		&p.Pansexual, &p.Plural, &p.Poly, &p.PrideFlag, &p.Trans,
	}
}

// Ints returns the wire form of the set.
func (s Special) Ints() []int { return toInts(s.flags()) }

// Ints returns the wire form of the set.
func (p Pride) Ints() []int { return toInts(p.flags()) }

// SpecialFromInts builds a Special set; any non-zero value sets the flag.
func SpecialFromInts(v []int) (Special, error) {
	var s Special
	if err := fromInts(s.flags(), v, "special"); err != nil {
		return Special{}, err
	}
	return s, nil
}

// PrideFromInts builds a Pride set; any non-zero value sets the flag.
func PrideFromInts(v []int) (Pride, error) {
	var p Pride
	if err := fromInts(p.flags(), v, "pride"); err != nil {
		return Pride{}, err
	}
	return p, nil
}

func (s Special) MarshalJSON() ([]byte, error) { return json.Marshal(s.Ints()) }
func (p Pride) MarshalJSON() ([]byte, error) { return json.Marshal(p.Ints()) }

func (s *Special) UnmarshalJSON(data []byte) error { return unmarshalJSON(data, s.flags(), "special") }
func (p *Pride) UnmarshalJSON(data []byte) error { return unmarshalJSON(data, p.flags(), "pride") }

func (s *Special) UnmarshalYAML(node *yaml.Node) error { return unmarshalYAML(node, s.flags(), "special") }
func (p *Pride) UnmarshalYAML(node *yaml.Node) error { return unmarshalYAML(node, p.flags(), "pride") }

func toInts(flags []*bool) []int {
	out := make([]int, len(flags))
	for i, f := range flags {
		if *f {
			out[i] = 1
		}
	}
	return out
}

func fromInts(flags []*bool, v []int, set string) error {
	if len(v) != len(flags) {
		return fmt.Errorf("badges: %s expects %d flags, got %d", set, len(flags), len(v))
	}
	for i, f := range flags {
		*f = v[i] != 0
	}
	return nil
}

func unmarshalJSON(data []byte, flags []*bool, set string) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("badges: %s: %w", set, err)
	}
	return fromInts(flags, v, set)
}

func unmarshalYAML(node *yaml.Node, flags []*bool, set string) error {
	var v []int
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("badges: %s: %w", set, err)
	}
	return fromInts(flags, v, set)
}
