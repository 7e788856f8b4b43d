package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

// catalogKinds lists the reference lists in display order
var catalogKinds = []string{"categories", "service-categories", "subcategories", "urgencies", "templates"}

var (
	includeDeleted bool
	categoryName   string
)

// catalogCmd fetches reference lists concurrently
var catalogCmd = &cobra.Command{
	Use:   "catalog [" + strings.Join(catalogKinds, "|") + "]...",
	Short: "Show the reference lists used when creating tickets",
	Long: `Fetch categories, service categories, subcategories, urgencies and request
templates. Without arguments every list is fetched; the requests run concurrently.`,
	ValidArgs: catalogKinds,
	Args:      cobra.OnlyValidArgs,
	RunE:      runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().IntVar(&pageSize, "page-size", 0, "entries per list (default from config)")
	catalogCmd.Flags().IntVar(&offset, "offset", 0, "start index of each list")
	catalogCmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "also show deleted entries")
	catalogCmd.Flags().StringVar(&categoryName, "category", "", "only subcategories of this category")
}

// catalogResult holds whichever lists were requested
type catalogResult struct {
	Categories        *helpdesk.CategoryPage        `json:"categories,omitempty"`
	ServiceCategories *helpdesk.ServiceCategoryPage `json:"service_categories,omitempty"`
	Subcategories     *helpdesk.SubcategoryPage     `json:"subcategories,omitempty"`
	Urgencies         *helpdesk.UrgencyPage         `json:"urgencies,omitempty"`
	Templates         *helpdesk.TemplatePage        `json:"templates,omitempty"`
}

func runCatalog(cmd *cobra.Command, args []string) error {
	requested := func(kind string) bool {
		return len(args) == 0 || slices.Contains(args, kind)
	}

	pagination := catalogPagination()
	var result catalogResult

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(len(catalogKinds))

	// Each goroutine writes a distinct field of result
	for _, kind := range catalogKinds {
		if !requested(kind) {
			continue
		}
		switch kind {
		case "categories":
			g.Go(func() (err error) {
				result.Categories, err = client.ListCategories(ctx, helpdesk.CategoryFilter{Pagination: pagination})
				return wrapCatalogErr(kind, err)
			})
		case "service-categories":
			g.Go(func() (err error) {
				result.ServiceCategories, err = client.ListServiceCategories(ctx, helpdesk.CategoryFilter{Pagination: pagination})
				return wrapCatalogErr(kind, err)
			})
		case "subcategories":
			f := helpdesk.SubcategoryFilter{Pagination: pagination}
			if categoryName != "" {
				f.SearchFields = helpdesk.Embed(helpdesk.SubcategorySearchFields{CategoryName: helpdesk.Set(categoryName)})
			}
			g.Go(func() (err error) {
				result.Subcategories, err = client.ListSubcategories(ctx, f)
				return wrapCatalogErr(kind, err)
			})
		case "urgencies":
			g.Go(func() (err error) {
				result.Urgencies, err = client.ListUrgencies(ctx, helpdesk.UrgencyFilter{Pagination: pagination})
				return wrapCatalogErr(kind, err)
			})
		case "templates":
			g.Go(func() (err error) {
				result.Templates, err = client.ListTemplates(ctx, helpdesk.TemplateFilter{Pagination: pagination})
				return wrapCatalogErr(kind, err)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if !includeDeleted {
		result.dropDeleted()
	}

	return render(result, func() string { return formatter.FormatCatalogResult(result) })
}

func wrapCatalogErr(kind string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return nil
}

// dropDeleted removes deleted entries from every fetched list
func (r *catalogResult) dropDeleted() {
	if r.Categories != nil {
		r.Categories.Categories = slices.DeleteFunc(r.Categories.Categories, func(c helpdesk.Category) bool { return c.IsDeleted })
	}
	if r.ServiceCategories != nil {
		r.ServiceCategories.ServiceCategories = slices.DeleteFunc(r.ServiceCategories.ServiceCategories, func(c helpdesk.Category) bool { return c.IsDeleted })
	}
	if r.Subcategories != nil {
		r.Subcategories.Subcategories = slices.DeleteFunc(r.Subcategories.Subcategories, func(s helpdesk.Subcategory) bool { return s.IsDeleted })
	}
	if r.Urgencies != nil {
		r.Urgencies.Urgencies = slices.DeleteFunc(r.Urgencies.Urgencies, func(u helpdesk.Urgency) bool { return u.IsDeleted })
	}
	if r.Templates != nil {
		r.Templates.RequestTemplates = slices.DeleteFunc(r.Templates.RequestTemplates, func(t helpdesk.Template) bool { return t.IsDeleted })
	}
}

// FormatCatalogResult formats every fetched list in display order
func (f *ConsoleFormatter) FormatCatalogResult(r catalogResult) string {
	var sb strings.Builder
	if r.Categories != nil {
		sb.WriteString(f.FormatCatalog("Category", categoryEntries(r.Categories.Categories)))
	}
	if r.ServiceCategories != nil {
		sb.WriteString(f.FormatCatalog("Service category", categoryEntries(r.ServiceCategories.ServiceCategories)))
	}
	if r.Subcategories != nil {
		sb.WriteString(f.FormatCatalog("Subcategory", subcategoryEntries(r.Subcategories.Subcategories)))
	}
	if r.Urgencies != nil {
		sb.WriteString(f.FormatCatalog("Urgency", urgencyEntries(r.Urgencies.Urgencies)))
	}
	if r.Templates != nil {
		sb.WriteString(f.FormatTemplates(r.Templates.RequestTemplates))
	}
	return sb.String()
}
