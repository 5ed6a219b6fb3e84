// Package catalog reads and updates the JSON documents describing the
// scoring vocabulary: point values, comp priorities, boss aliases and name
// aliases. Each document lives in the base directory and loads
// independently.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"dkptally/internal/domain/points"
	"dkptally/internal/domain/sanitize"
)

// Document file names inside the base directory.
const (
	pointsFile      = "points.json"
	priosFile       = "prios.json"
	bossAliasesFile = "boss_aliases.json"
	nameAliasesFile = "name_aliases.json"
)

// Catalog is a base-directory-scoped view of the vocabulary documents.
type Catalog struct {
	baseDir string
}

// New creates a Catalog rooted at baseDir.
func New(baseDir string) *Catalog {
	return &Catalog{baseDir: baseDir}
}

// BaseDir returns the directory the catalog reads from.
func (c *Catalog) BaseDir() string {
	return c.baseDir
}

func (c *Catalog) path(name string) string {
	return filepath.Join(c.baseDir, name)
}

// PointsStore loads points.json and prios.json into a resolver. Both
// documents are required; a missing or malformed one is a fatal error.
func (c *Catalog) PointsStore() (*points.Store, error) {
	table, err := c.loadPointsTable()
	if err != nil {
		return nil, err
	}
	prios, err := c.loadPrios()
	if err != nil {
		return nil, err
	}
	return points.NewStore(table, prios), nil
}

func (c *Catalog) loadPointsTable() (map[string]points.Value, error) {
	data, err := os.ReadFile(c.path(pointsFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pointsFile, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", pointsFile, err)
	}

	table := make(map[string]points.Value, len(raw))
	for key, value := range raw {
		entry, err := parsePointValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: key %q: %w", pointsFile, key, err)
		}
		table[key] = entry
	}
	return table, nil
}

func parsePointValue(value any) (points.Value, error) {
	switch v := value.(type) {
	case float64:
		n, err := asInt(v)
		if err != nil {
			return points.Value{}, err
		}
		return points.ScalarValue(n), nil
	case map[string]any:
		base := make(map[string]int, len(v))
		for star, pts := range v {
			f, ok := pts.(float64)
			if !ok {
				return points.Value{}, fmt.Errorf("star %q: expected a number", star)
			}
			n, err := asInt(f)
			if err != nil {
				return points.Value{}, fmt.Errorf("star %q: %w", star, err)
			}
			base[star] = n
		}
		return points.RingBaseValue(base), nil
	case []any:
		tiers := make([]points.Tier, 0, len(v))
		for i, item := range v {
			tier, err := parseTier(item)
			if err != nil {
				return points.Value{}, fmt.Errorf("tier %d: %w", i, err)
			}
			tiers = append(tiers, tier)
		}
		return points.TierValue(tiers), nil
	default:
		return points.Value{}, errors.New("unsupported value shape")
	}
}

func parseTier(item any) (points.Tier, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return points.Tier{}, errors.New("expected an object")
	}
	var tier points.Tier
	var err error
	if tier.Level, err = intField(obj, "level"); err != nil {
		return points.Tier{}, err
	}
	if tier.Five, err = intField(obj, "5"); err != nil {
		return points.Tier{}, err
	}
	if tier.Six, err = intField(obj, "6"); err != nil {
		return points.Tier{}, err
	}
	return tier, nil
}

func intField(obj map[string]any, field string) (int, error) {
	raw, ok := obj[field]
	if !ok {
		return 0, fmt.Errorf("missing field %q", field)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q: expected a number", field)
	}
	n, err := asInt(f)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", field, err)
	}
	return n, nil
}

func asInt(f float64) (int, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}

func (c *Catalog) loadPrios() ([]string, error) {
	data, err := os.ReadFile(c.path(priosFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", priosFile, err)
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", priosFile, err)
	}
	prios := make([]string, 0, len(raw))
	for _, p := range raw {
		if s, ok := p.(string); ok {
			prios = append(prios, s)
			continue
		}
		prios = append(prios, fmt.Sprintf("%v", p))
	}
	return prios, nil
}

// BossAliases loads the ordered alias list. A missing document yields an
// empty list so a fresh base directory works out of the box.
func (c *Catalog) BossAliases() ([]sanitize.AliasPair, error) {
	data, err := os.ReadFile(c.path(bossAliasesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", bossAliasesFile, err)
	}
	var raw []map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", bossAliasesFile, err)
	}

	var pairs []sanitize.AliasPair
	for _, item := range raw {
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pairs = append(pairs, sanitize.AliasPair{Pattern: k, Canonical: item[k]})
		}
	}
	return pairs, nil
}

// NameAliases loads the persisted token → display-name map. A missing
// document yields an empty map.
func (c *Catalog) NameAliases() (map[string]string, error) {
	data, err := os.ReadFile(c.path(nameAliasesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", nameAliasesFile, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", nameAliasesFile, err)
	}
	return raw, nil
}
