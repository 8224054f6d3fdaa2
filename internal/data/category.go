package data

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DamageCategory tags damage so mitigation, experience and presentation can
// tell hits apart.
type DamageCategory int

const (
	Typeless DamageCategory = iota
	Melee
	Ranged
	Magic
)

var categoryNames = [...]string{"typeless", "melee", "ranged", "magic"}

func (c DamageCategory) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseDamageCategory accepts the lower-case category names; empty means typeless.
func ParseDamageCategory(s string) (DamageCategory, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Typeless, nil
	}
	for i, n := range categoryNames {
		if n == s {
			return DamageCategory(i), nil
		}
	}
	return Typeless, fmt.Errorf("unknown damage category %q", s)
}

func (c *DamageCategory) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDamageCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
