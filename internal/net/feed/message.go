package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/l1jgo/combatcore/internal/core/event"
)

// Inbound command types.
const (
	CmdJoin     = "join"
	CmdAttack   = "attack"
	CmdMove     = "move"
	CmdAbility  = "ability"
	CmdInteract = "interact"
	CmdCancel   = "cancel"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnhandledEvent = errors.New("unhandled event")
)

// Command is one client request. Which fields are read depends on Type.
type Command struct {
	Type   string  `json:"type"`
	Name   string  `json:"name,omitempty"`   // join
	Target uint64  `json:"target,omitempty"` // attack, interact
	X      float64 `json:"x,omitempty"`      // move
	Y      float64 `json:"y,omitempty"`      // move
	Radius float64 `json:"radius,omitempty"` // move; 0 = server default
	Slot   int     `json:"slot,omitempty"`   // ability
}

// DecodeCommand parses and validates a client message.
func DecodeCommand(raw []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(raw, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Type {
	case CmdJoin:
		if c.Name == "" {
			return Command{}, fmt.Errorf("join: missing name")
		}
	case CmdAttack, CmdInteract:
		if c.Target == 0 {
			return Command{}, fmt.Errorf("%s: missing target", c.Type)
		}
	case CmdMove, CmdAbility, CmdCancel:
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return c, nil
}

// Envelope is the outbound frame.
type Envelope struct {
	Type   string `json:"type"`
	Entity uint64 `json:"entity"`
	Data   any    `json:"data,omitempty"`
}

type animationData struct {
	Name    string `json:"name"`
	Trigger bool   `json:"trigger,omitempty"`
	Value   bool   `json:"value,omitempty"`
}

type effectData struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Play bool   `json:"play"`
}

type abilityData struct {
	Slot           int     `json:"slot"`
	Cooldown       float64 `json:"cooldown"`
	GlobalCooldown float64 `json:"global_cooldown"`
}

type healthData struct {
	Fraction  float64 `json:"fraction"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
}

type hitsplatData struct {
	Amount  int  `json:"amount"`
	Blocked bool `json:"blocked,omitempty"`
}

type statusData struct {
	Key       string  `json:"key"`
	Magnitude float64 `json:"magnitude"`
	Duration  int     `json:"duration"`
	Stacks    int     `json:"stacks"`
}

type experienceData struct {
	Recipient uint64 `json:"recipient,omitempty"`
	Category  string `json:"category"`
	Amount    int    `json:"amount"`
}

func status(v event.StatusView) statusData {
	return statusData{Key: v.Key, Magnitude: v.Magnitude, Duration: v.Duration, Stacks: v.Stacks}
}

// Wrap converts a presentation event into its envelope.
func Wrap(ev any) (Envelope, error) {
	switch e := ev.(type) {
	case event.Animation:
		return Envelope{"animation", uint64(e.Entity), animationData{e.Name, e.Trigger, e.Value}}, nil
	case event.Effect:
		return Envelope{"effect", uint64(e.Entity), effectData{e.Kind, e.ID, e.Play}}, nil
	case event.AbilityTriggered:
		return Envelope{"ability", uint64(e.Entity), abilityData{
			Slot:           e.Slot,
			Cooldown:       e.Cooldown.Seconds(),
			GlobalCooldown: e.GlobalCooldown.Seconds(),
		}}, nil
	case event.HealthUpdated:
		return Envelope{"health", uint64(e.Entity), healthData{e.Fraction, e.Health, e.MaxHealth}}, nil
	case event.Hitsplat:
		return Envelope{"hitsplat", uint64(e.Entity), hitsplatData{e.Amount, e.Blocked}}, nil
	case event.Death:
		return Envelope{Type: "death", Entity: uint64(e.Entity)}, nil
	case event.CombatChanged:
		return Envelope{"combat", uint64(e.Entity), map[string]bool{"in_combat": e.InCombat}}, nil
	case event.StatusAdded:
		return Envelope{"status_added", uint64(e.Entity), status(e.Status)}, nil
	case event.StatusUpdated:
		return Envelope{"status_updated", uint64(e.Entity), status(e.Status)}, nil
	case event.StatusRemoved:
		return Envelope{"status_removed", uint64(e.Entity), map[string]string{"key": e.Key}}, nil
	case event.StatusesUpdated:
		list := make([]statusData, len(e.Statuses))
		for i, v := range e.Statuses {
			list[i] = status(v)
		}
		return Envelope{"statuses", uint64(e.Entity), list}, nil
	case event.ExperienceAwarded:
		return Envelope{"experience", uint64(e.Victim), experienceData{uint64(e.Recipient), e.Category, e.Amount}}, nil
	}
	return Envelope{}, fmt.Errorf("%w: %T", ErrUnhandledEvent, ev)
}

// Encode wraps and marshals a presentation event.
func Encode(ev any) ([]byte, error) {
	env, err := Wrap(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
