// Package renderer renders wellets values as markdown documents.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/wellets"
)

//go:embed *.md
var templates embed.FS

// AllocationMarkdown renders a rebalance result as a markdown table.
func AllocationMarkdown(a *wellets.Allocation) string {
	partials := map[string]string{
		"allocation_title": "allocation_title.md",
		"allocation_table": "allocation_table.md",
	}
	return renderTemplate("allocation", "allocation.md", partials, NewAllocation(a))
}

// CurrenciesMarkdown renders the currency catalog, with the value of each currency in 'base'.
func CurrenciesMarkdown(c *wellets.Catalog, base wellets.Currency) string {
	return renderTemplate("currencies", "currencies.md", nil, NewCurrencies(c, base))
}

// WalletsMarkdown renders all the wallets of the tree, largest first, with their value in 'base'.
func WalletsMarkdown(tree *wellets.Tree, c *wellets.Catalog, base wellets.Currency) string {
	return renderTemplate("wallets", "wallets.md", nil, NewWallets(tree, c, base))
}

// TreeMarkdown renders the portfolio tree as an indented outline.
func TreeMarkdown(tree *wellets.Tree) string {
	return renderTemplate("tree", "tree.md", nil, NewTree(tree))
}

// ConversionMarkdown renders the result of a conversion.
func ConversionMarkdown(from, to wellets.Currency, amount, result float64) string {
	return renderTemplate("conversion", "conversion.md", nil, NewConversion(from, to, amount, result))
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
