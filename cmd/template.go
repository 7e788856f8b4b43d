package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

var (
	templateName    string
	serviceOnly     bool
	serviceCategory int64
)

// templateCmd groups the request template subcommands
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Browse request templates",
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateGetCmd)
	templateCmd.AddCommand(templateListCmd)

	templateListCmd.Flags().IntVar(&pageSize, "page-size", 0, "templates per page (default from config)")
	templateListCmd.Flags().IntVar(&offset, "offset", 0, "start index of the page")
	templateListCmd.Flags().StringVar(&templateName, "name", "", "exact template name")
	templateListCmd.Flags().BoolVar(&serviceOnly, "service", false, "only service templates")
	templateListCmd.Flags().Int64Var(&serviceCategory, "service-category", 0, "service category id")
}

var templateGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a request template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := helpdesk.ParseID(args[0])
		if err != nil {
			return err
		}

		template, err := client.GetTemplate(cmd.Context(), id)
		if err != nil {
			return err
		}
		if template == nil {
			return fmt.Errorf("template %s not found", id)
		}
		return render(template, func() string { return formatter.FormatTemplates([]helpdesk.Template{*template}) })
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List request templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var search helpdesk.TemplateSearchFields
		var searching bool
		if templateName != "" {
			search.Name = helpdesk.Set(templateName)
			searching = true
		}
		if serviceOnly {
			search.IsServiceTemplate = helpdesk.Set(true)
			searching = true
		}
		if serviceCategory != 0 {
			search.ServiceCategoryID = helpdesk.Set(helpdesk.ID(serviceCategory))
			searching = true
		}

		f := helpdesk.TemplateFilter{Pagination: catalogPagination()}
		if searching {
			f.SearchFields = helpdesk.Embed(search)
		}

		result, err := client.ListTemplates(cmd.Context(), f)
		if err != nil {
			return err
		}
		return render(result, func() string { return formatter.FormatTemplates(result.RequestTemplates) })
	},
}

// catalogPagination builds offset paging from the shared list flags
func catalogPagination() helpdesk.Pagination {
	limit := pageSize
	if limit == 0 {
		limit = cfg.Helpdesk.PageSize
	}
	return helpdesk.Pagination{Limit: limit, Offset: offset}
}
