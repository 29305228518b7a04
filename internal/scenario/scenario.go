// Package scenario loads offline standings files for the simulate command.
package scenario

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
)

// ErrInvalidScenario is wrapped by every validation failure
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a frozen group state plus an optional forced result
type Scenario struct {
	Name     string                  `yaml:"name" json:"name"`
	Teams    []qualification.Team    `yaml:"teams" json:"teams"`
	Fixtures []qualification.Fixture `yaml:"fixtures" json:"fixtures"`
	WhatIf   *WhatIf                 `yaml:"whatIf,omitempty" json:"whatIf,omitempty"`
}

// WhatIf names one result to force
type WhatIf struct {
	Team1  qualification.TeamID `yaml:"team1" json:"team1Id"`
	Team2  qualification.TeamID `yaml:"team2" json:"team2Id"`
	Winner qualification.TeamID `yaml:"winner" json:"winnerId"`
}

// Load reads a .yaml/.yml or .json scenario.
// Unknown fields fail the load so typos surface immediately.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc *Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		sc, err = DecodeYAML(data)
	case ".json":
		sc, err = DecodeJSON(data)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidScenario, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// DecodeYAML strictly decodes and validates a YAML scenario
func DecodeYAML(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &sc, sc.Validate()
}

// DecodeJSON strictly decodes and validates a JSON scenario
func DecodeJSON(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &sc, sc.Validate()
}

// Validate checks the what-if only; standings are checked by the simulator
func (s *Scenario) Validate() error {
	if len(s.Teams) == 0 {
		return fmt.Errorf("%w: no teams", ErrInvalidScenario)
	}
	if s.WhatIf == nil {
		return nil
	}

	w := s.WhatIf
	if w.Team1 == "" || w.Team2 == "" || w.Winner == "" {
		return fmt.Errorf("%w: whatIf needs team1, team2 and winner", ErrInvalidScenario)
	}
	if w.Winner != w.Team1 && w.Winner != w.Team2 {
		return fmt.Errorf("%w: whatIf winner %s is not playing", ErrInvalidScenario, w.Winner)
	}
	return nil
}

// Hash fingerprints the scenario (SHA-256 over canonical JSON)
func Hash(s *Scenario) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
