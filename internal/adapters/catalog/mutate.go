package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// AddBossAlias upserts one alias → canonical pair, creating the document
// when absent. An existing pair for the alias is updated in place so list
// order, and with it substitution priority, is preserved.
func (c *Catalog) AddBossAlias(alias, canonical string) error {
	alias = strings.ToLower(alias)
	canonical = strings.ToLower(canonical)

	var data []map[string]string
	if err := c.readOptional(bossAliasesFile, &data); err != nil {
		return err
	}

	updated := false
	for _, item := range data {
		if _, ok := item[alias]; ok {
			item[alias] = canonical
			updated = true
			break
		}
	}
	if !updated {
		data = append(data, map[string]string{alias: canonical})
	}

	return c.writeDocument(bossAliasesFile, data)
}

// AddNameAlias upserts one name alias. The alias key is lower-cased; the
// canonical display form is stored as given.
func (c *Catalog) AddNameAlias(alias, canonical string) error {
	alias = strings.ToLower(alias)

	data := map[string]string{}
	if err := c.readOptional(nameAliasesFile, &data); err != nil {
		return err
	}
	data[alias] = canonical

	return c.writeDocument(nameAliasesFile, data)
}

// AddPointsValue upserts a flat point value for a boss key. Ring and tier
// entries are edited by hand; only scalars are written programmatically.
func (c *Catalog) AddPointsValue(boss string, pts int) error {
	boss = strings.ToLower(boss)

	data := map[string]any{}
	if err := c.readOptional(pointsFile, &data); err != nil {
		return err
	}
	data[boss] = pts

	return c.writeDocument(pointsFile, data)
}

// readOptional unmarshals a document into out, leaving out untouched when
// the file does not exist yet.
func (c *Catalog) readOptional(name string, out any) error {
	data, err := os.ReadFile(c.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) writeDocument(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(c.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
