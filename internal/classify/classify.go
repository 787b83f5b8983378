// Package classify guesses a document's category from its first page so the
// vision extractor's prompt can be specialized for the rest of the document.
package classify

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/docmark/internal/model"
)

// Category pairs a document type with the keywords that identify it and the
// extraction focus sent to the vision model.
type Category struct {
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	PromptFocus string   `yaml:"prompt_focus"`
}

// Classifier matches first-page text against an ordered category list.
// Categories are a slice, not a map: ties are broken by definition order,
// first defined wins.
type Classifier struct {
	categories []Category
}

// New creates a Classifier over the given categories. Passing nil uses the
// built-in category set.
func New(categories []Category) *Classifier {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Classifier{categories: categories}
}

// LoadCategories reads a category list from a YAML file, replacing the
// built-in set.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read categories %s", path)
	}

	var categories []Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, eris.Wrapf(err, "classify: parse categories %s", path)
	}
	if len(categories) == 0 {
		return nil, eris.Errorf("classify: no categories defined in %s", path)
	}
	return categories, nil
}

// Classify scores each category by counting case-insensitive keyword hits in
// the first page's text and returns the highest-scoring one, or the general
// context when nothing matches. Deterministic for identical input.
func (c *Classifier) Classify(firstPageText string) model.DocumentContext {
	lower := strings.ToLower(firstPageText)

	best := -1
	bestScore := 0
	for i, cat := range c.categories {
		score := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return model.GeneralContext()
	}

	cat := c.categories[best]
	zap.L().Debug("classify: detected document type",
		zap.String("category", cat.Name),
		zap.Int("keyword_hits", bestScore),
	)
	return model.DocumentContext{
		Category:    cat.Name,
		PromptFocus: cat.PromptFocus,
	}
}

// DefaultCategories returns the built-in category set in priority order.
func DefaultCategories() []Category {
	return []Category{
		{
			Name: "financial",
			Keywords: []string{
				"balance sheet", "income statement", "profit", "loss", "revenue",
				"expense", "asset", "liability", "cash flow", "financial statement",
				"quarterly report", "annual report", "10-k", "10-q",
			},
			PromptFocus: "Pay special attention to numerical data, financial tables, currency amounts, percentages, and date ranges. Preserve all decimal places and number formatting.",
		},
		{
			Name: "insurance",
			Keywords: []string{
				"policy", "coverage", "deductible", "premium", "benefit", "claim",
				"insurance", "copay", "coinsurance", "out-of-pocket", "network",
			},
			PromptFocus: "Focus on preserving benefit details, coverage amounts, policy numbers, and plan structures. Tables often contain tiered benefits that must maintain their relationships.",
		},
		{
			Name: "legal",
			Keywords: []string{
				"agreement", "contract", "whereas", "herein", "thereof", "pursuant",
				"obligation", "party", "terms and conditions", "governing law",
			},
			PromptFocus: "Preserve all legal language exactly, including section numbers, clause references, and formal terminology. Maintain document hierarchy and numbering systems.",
		},
		{
			Name: "medical",
			Keywords: []string{
				"patient", "diagnosis", "treatment", "medication", "prescription",
				"symptoms", "medical history", "lab results", "vital signs",
			},
			PromptFocus: "Accurately capture medical terminology, dosages, test results, and clinical data. Preserve all abbreviations and medical codes exactly as written.",
		},
		{
			Name: "technical",
			Keywords: []string{
				"specification", "requirement", "implementation", "architecture",
				"api", "endpoint", "configuration", "parameter", "function",
			},
			PromptFocus: "Maintain code formatting, technical specifications, and hierarchical structures. Preserve all technical abbreviations and version numbers.",
		},
		{
			Name: "invoice",
			Keywords: []string{
				"invoice", "bill", "payment due", "subtotal", "tax", "total",
				"item", "quantity", "unit price", "po number", "invoice number",
			},
			PromptFocus: "Focus on line items, quantities, prices, and totals. Maintain the relationship between items and their corresponding amounts. Preserve all invoice identifiers.",
		},
		{
			Name: "report",
			Keywords: []string{
				"executive summary", "findings", "recommendations", "analysis",
				"methodology", "conclusion", "results", "data", "statistics",
			},
			PromptFocus: "Preserve document structure including headings, subheadings, and bullet points. Maintain data relationships in charts and tables.",
		},
	}
}
