// Package classification assigns a category and a display glyph to catalog items.
package classification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/swipes/internal/model"
)

// Fallbacks used when neither the department table nor any keyword matches.
const (
	FallbackCategory = "Miscellaneous"
	FallbackGlyph    = "📦"
)

// Source records which table produced a classification field.
type Source string

// Classification sources.
const (
	SourceDepartment Source = "department"
	SourceKeyword    Source = "keyword"
	SourceFallback   Source = "fallback"
)

// ErrInvalidRule reports an unusable rule table entry.
var ErrInvalidRule = errors.New("invalid classification rule")

// DepartmentRule maps a store department id straight to a category.
type DepartmentRule struct {
	ID       string
	Category string
}

// KeywordRule assigns Value when any keyword is contained in the item name.
type KeywordRule struct {
	Value    string
	Keywords []string
}

// Rules are the ordered lookup tables. Earlier entries win ties.
type Rules struct {
	Departments []DepartmentRule
	Categories  []KeywordRule
	Glyphs      []KeywordRule
}

// Result is the outcome of classifying one item.
type Result struct {
	Category       string
	Glyph          string
	CategorySource Source
	GlyphSource    Source
}

type compiledRule struct {
	value    string
	keywords []string
}

// Classifier applies Rules to item names. It is safe for concurrent use.
type Classifier struct {
	departments map[string]string
	categories  []compiledRule
	glyphs      []compiledRule
	mu          sync.RWMutex
}

// NewClassifier validates and compiles the rule tables.
func NewClassifier(rules Rules) (*Classifier, error) {
	c := &Classifier{}
	if err := c.UpdateRules(rules); err != nil {
		return nil, err
	}
	return c, nil
}

// NewDefaultClassifier returns a classifier over DefaultRules.
func NewDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default classification rules are invalid: %v", err))
	}
	return c
}

// UpdateRules swaps in a new set of rule tables.
func (c *Classifier) UpdateRules(rules Rules) error {
	departments := make(map[string]string, len(rules.Departments))
	for _, d := range rules.Departments {
		id := strings.TrimSpace(d.ID)
		if id == "" || strings.TrimSpace(d.Category) == "" {
			return fmt.Errorf("%w: department %q", ErrInvalidRule, d.ID)
		}
		// First entry for an id wins.
		if _, exists := departments[id]; !exists {
			departments[id] = d.Category
		}
	}

	categories, err := compileKeywordRules("category", rules.Categories)
	if err != nil {
		return err
	}
	glyphs, err := compileKeywordRules("glyph", rules.Glyphs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.departments = departments
	c.categories = categories
	c.glyphs = glyphs
	c.mu.Unlock()

	return nil
}

func compileKeywordRules(kind string, rules []KeywordRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Value) == "" {
			return nil, fmt.Errorf("%w: %s rule without a value", ErrInvalidRule, kind)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %s rule %q has no keywords", ErrInvalidRule, kind, r.Value)
		}
		compiled = append(compiled, compiledRule{value: r.Value, keywords: keywords})
	}
	return compiled, nil
}

// Classify picks a category from the department table, then the keyword table, then the
// fallback; the glyph comes from the keyword table or the fallback.
func (c *Classifier) Classify(name, departmentID string) Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	searchText := strings.ToLower(name)
	res := Result{
		Category:       FallbackCategory,
		CategorySource: SourceFallback,
		Glyph:          FallbackGlyph,
		GlyphSource:    SourceFallback,
	}

	if cat, ok := c.departments[strings.TrimSpace(departmentID)]; ok {
		res.Category = cat
		res.CategorySource = SourceDepartment
	} else if cat, ok := firstMatch(c.categories, searchText); ok {
		res.Category = cat
		res.CategorySource = SourceKeyword
	}

	if glyph, ok := firstMatch(c.glyphs, searchText); ok {
		res.Glyph = glyph
		res.GlyphSource = SourceKeyword
	}

	return res
}

func firstMatch(rules []compiledRule, text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.value, true
			}
		}
	}
	return "", false
}

// Enrich fills the category and glyph of a catalog item in place.
func (c *Classifier) Enrich(item *model.CatalogItem) Result {
	res := c.Classify(item.Name, item.DepartmentID)
	item.Category = res.Category
	item.Glyph = res.Glyph
	return res
}

// EnrichBatch enriches every item, stopping early if ctx is cancelled.
func (c *Classifier) EnrichBatch(ctx context.Context, items []model.CatalogItem) error {
	for i := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			c.Enrich(&items[i])
		}
	}
	return nil
}

// CategoryFor returns just the category, used for purchase line items typed by hand.
func (c *Classifier) CategoryFor(name string) string {
	return c.Classify(name, "").Category
}
