package importer

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"stockroom/internal/models"
)

//go:embed keywords.yaml
var defaultKeywords []byte

type HeaderKeywords struct {
	Number      []string `yaml:"number"`
	NumberExact []string `yaml:"number_exact"`
	Product     []string `yaml:"product"`
	Quantity    []string `yaml:"quantity"`
	Status      []string `yaml:"status"`
}

type CategoryKeywords struct {
	Category models.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// KeywordTable is the vocabulary used to read foreign spreadsheets: header
// names, unit words and category hints.
type KeywordTable struct {
	Headers         HeaderKeywords         `yaml:"headers"`
	Units           map[string]models.Unit `yaml:"units"`
	DefaultUnit     models.Unit            `yaml:"default_unit"`
	Categories      []CategoryKeywords     `yaml:"categories"`
	DefaultCategory models.Category        `yaml:"default_category"`

	fold  func(string) string
	units map[string]models.Unit
}

// LoadKeywords reads the table at path, or the built-in table when path is
// empty.
func LoadKeywords(path string) (*KeywordTable, error) {
	data := defaultKeywords
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read keyword table: %w", err)
		}
		data = b
	}
	return ParseKeywords(data)
}

func ParseKeywords(data []byte) (*KeywordTable, error) {
	var kt KeywordTable
	if err := yaml.Unmarshal(data, &kt); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if kt.DefaultUnit == "" {
		kt.DefaultUnit = models.UnitPiece
	}
	if kt.DefaultCategory == "" {
		kt.DefaultCategory = models.CategoryOther
	}
	if !kt.DefaultUnit.Valid() {
		return nil, fmt.Errorf("keyword table: unknown default unit %q", kt.DefaultUnit)
	}
	if !kt.DefaultCategory.Valid() {
		return nil, fmt.Errorf("keyword table: unknown default category %q", kt.DefaultCategory)
	}
	for _, c := range kt.Categories {
		if !c.Category.Valid() {
			return nil, fmt.Errorf("keyword table: unknown category %q", c.Category)
		}
	}

	caser := cases.Lower(language.Turkish)
	kt.fold = func(s string) string { return caser.String(strings.TrimSpace(s)) }
	kt.units = make(map[string]models.Unit, len(kt.Units))
	for word, unit := range kt.Units {
		if !unit.Valid() {
			return nil, fmt.Errorf("keyword table: unknown unit %q for %q", unit, word)
		}
		kt.units[kt.fold(word)] = unit
	}
	return &kt, nil
}

// Fold lower-cases s with Turkish rules, so "İ" and "I" fold to "i" and
// "ı" respectively.
func (kt *KeywordTable) Fold(s string) string { return kt.fold(s) }

func (kt *KeywordTable) containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, kt.fold(w)) {
			return true
		}
	}
	return false
}

func (kt *KeywordTable) Unit(word string) models.Unit {
	if u, ok := kt.units[kt.fold(word)]; ok {
		return u
	}
	return kt.DefaultUnit
}

func (kt *KeywordTable) Category(name string) models.Category {
	folded := kt.fold(name)
	for _, c := range kt.Categories {
		if kt.containsAny(folded, c.Keywords) {
			return c.Category
		}
	}
	return kt.DefaultCategory
}
