package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stranadev/helpdesk-client/filter"
	"github.com/stranadev/helpdesk-client/helpdesk"
)

var (
	// List flags
	pageSize       int
	offset         int
	page           int
	includeTotal   bool
	requesterName  string
	requesterEmail string
	statusName     string
	sortField      string
	sortOrder      string
	whereExprs     []string
	savedFilters   []string

	// Create and update flags
	payloadFile     string
	subject         string
	description     string
	requesterEmailC string
	requesterNameC  string
	urgencyID       int64
	templateID      int64

	// Attach flags
	attachField string
	contentType string

	// Note flags
	noteText            string
	showToRequester     bool
	markFirstResponse   bool
	addToLinkedRequests bool
)

// ticketCmd groups the ticket subcommands
var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Read and change tickets",
}

func init() {
	rootCmd.AddCommand(ticketCmd)

	ticketCmd.AddCommand(ticketGetCmd)
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketCreateCmd)
	ticketCmd.AddCommand(ticketUpdateCmd)
	ticketCmd.AddCommand(ticketCancelCmd)
	ticketCmd.AddCommand(ticketAttachCmd)
	ticketCmd.AddCommand(ticketNoteCmd)
	ticketCmd.AddCommand(ticketResolutionCmd)

	ticketListCmd.Flags().IntVar(&pageSize, "page-size", 0, "tickets per page (default from config)")
	ticketListCmd.Flags().IntVar(&offset, "offset", 0, "start index of the page")
	ticketListCmd.Flags().IntVar(&page, "page", 0, "page number; switches to page-number paging")
	ticketListCmd.Flags().BoolVar(&includeTotal, "total", false, "ask the server for the total count")
	ticketListCmd.Flags().StringVar(&requesterName, "requester", "", "exact requester name")
	ticketListCmd.Flags().StringVar(&requesterEmail, "requester-email", "", "requester email (criteria search)")
	ticketListCmd.Flags().StringVar(&statusName, "status", "", "status name (criteria search)")
	ticketListCmd.Flags().StringVar(&sortField, "sort-field", "", "field to sort by")
	ticketListCmd.Flags().StringVar(&sortOrder, "sort-order", "", "sort order (asc/desc)")
	ticketListCmd.Flags().StringArrayVarP(&whereExprs, "where", "w", nil, "local filter expression, repeatable")
	ticketListCmd.Flags().StringArrayVarP(&savedFilters, "filter", "f", nil, "saved filter from config, repeatable")

	ticketCreateCmd.Flags().StringVarP(&payloadFile, "file", "f", "", `JSON document {"request": {...}}`)
	ticketCreateCmd.Flags().StringVar(&subject, "subject", "", "ticket subject")
	ticketCreateCmd.Flags().StringVar(&description, "description", "", "ticket description")
	ticketCreateCmd.Flags().StringVar(&requesterEmailC, "requester-email", "", "requester email")
	ticketCreateCmd.Flags().StringVar(&requesterNameC, "requester-name", "", "requester name")
	ticketCreateCmd.Flags().Int64Var(&urgencyID, "urgency", 0, "urgency id")
	ticketCreateCmd.Flags().Int64Var(&templateID, "template", 0, "template id")

	ticketUpdateCmd.Flags().StringVarP(&payloadFile, "file", "f", "", `JSON document {"request": {...}}`)
	ticketUpdateCmd.Flags().StringVar(&subject, "subject", "", "new subject")
	ticketUpdateCmd.Flags().StringVar(&description, "description", "", "new description")
	ticketUpdateCmd.Flags().Int64Var(&urgencyID, "urgency", 0, "new urgency id")

	ticketAttachCmd.Flags().StringVar(&attachField, "field", "", "multipart field name (input_file/file)")
	ticketAttachCmd.Flags().StringVar(&contentType, "content-type", "", "content type (default from extension)")

	ticketNoteCmd.Flags().StringVarP(&noteText, "text", "t", "", "note text")
	ticketNoteCmd.Flags().BoolVar(&showToRequester, "show-to-requester", false, "make the note visible to the requester")
	ticketNoteCmd.Flags().BoolVar(&markFirstResponse, "first-response", false, "mark the note as first response")
	ticketNoteCmd.Flags().BoolVar(&addToLinkedRequests, "linked", false, "add the note to linked requests")
	_ = ticketNoteCmd.MarkFlagRequired("text")
}

// ticketGetCmd fetches tickets concurrently
var ticketGetCmd = &cobra.Command{
	Use:   "get <id>...",
	Short: "Show one or more tickets",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTicketGet,
}

func runTicketGet(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	futures := make([]*helpdesk.Future[*helpdesk.Ticket], len(ids))
	for i, id := range ids {
		futures[i] = asyncClient.GetTicket(ctx, id)
	}

	var tickets []helpdesk.Ticket
	for i, future := range futures {
		ticket, err := future.Wait(ctx)
		if err != nil {
			return fmt.Errorf("failed to get ticket %s: %w", ids[i], err)
		}
		if ticket == nil {
			logger.Warn().Stringer("id", ids[i]).Msg("Ticket not found")
			continue
		}
		tickets = append(tickets, *ticket)
	}

	if len(tickets) == 1 {
		return render(tickets[0], func() string { return formatter.FormatTicket(&tickets[0]) })
	}
	return render(tickets, func() string { return formatter.FormatTicketList(tickets, nil) })
}

// ticketListCmd lists tickets
var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	Long: `List tickets from the portal. Server-side paging and search are set with
flags; --where and --filter narrow the returned page locally, e.g.

  helpdesk ticket list --where 'statusIs("open") and not hasTechnician()'`,
	Args: cobra.NoArgs,
	RunE: runTicketList,
}

func runTicketList(cmd *cobra.Command, args []string) error {
	query, err := buildTicketQuery()
	if err != nil {
		return err
	}

	expressions, err := localFilterExpressions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := client.ListTickets(ctx, query)
	if err != nil {
		return err
	}

	tickets, err := filter.ApplyAll(ctx, expressions, result.Requests)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}

	logger.Debug().
		Int("fetched", len(result.Requests)).
		Int("matched", len(tickets)).
		Msg("Listed tickets")

	return render(tickets, func() string { return formatter.FormatTicketList(tickets, result.ListInfo) })
}

// buildTicketQuery chooses the ticket filter shape from the list flags
func buildTicketQuery() (helpdesk.TicketQuery, error) {
	limit := pageSize
	if limit == 0 {
		limit = cfg.Helpdesk.PageSize
	}
	if limit < 1 || limit > 100 {
		return nil, fmt.Errorf("page size must be between 1 and 100, got %d", limit)
	}

	var ordering helpdesk.Ordering
	if sortField != "" {
		ordering.SortField = helpdesk.Set(sortField)
	}
	switch helpdesk.SortOrder(sortOrder) {
	case "":
	case helpdesk.SortAsc, helpdesk.SortDesc:
		ordering.SortOrder = helpdesk.Set(helpdesk.SortOrder(sortOrder))
	default:
		return nil, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", sortOrder)
	}

	var total helpdesk.Field[bool]
	if includeTotal {
		total = helpdesk.Set(true)
	}

	var criteria helpdesk.Criteria
	if statusName != "" {
		criteria = criteria.And(helpdesk.FieldStatusName, helpdesk.ConditionEq, statusName)
	}
	if requesterEmail != "" {
		criteria = criteria.And(helpdesk.FieldRequesterEmail, helpdesk.ConditionEq, requesterEmail)
	}

	var search helpdesk.JSONText[helpdesk.TicketSearchFields]
	if requesterName != "" {
		search = helpdesk.Embed(helpdesk.TicketSearchFields{RequesterName: helpdesk.Set(requesterName)})
	}

	switch {
	case len(criteria) > 0:
		if requesterName != "" {
			criteria = criteria.And("requester.name", helpdesk.ConditionEq, requesterName)
		}
		return helpdesk.TicketCriteriaFilter{
			PagePagination: helpdesk.PagePagination{Page: max(page, 1), Limit: limit, CanIncludeCount: total},
			Ordering:       ordering,
			SearchCriteria: criteria,
		}, nil
	case page > 0:
		return helpdesk.TicketPageFilter{
			PagePagination: helpdesk.PagePagination{Page: page, Limit: limit, CanIncludeCount: total},
			Ordering:       ordering,
			SearchFields:   search,
		}, nil
	default:
		return helpdesk.TicketFilter{
			Pagination:   helpdesk.Pagination{Limit: limit, Offset: offset, CanIncludeCount: total},
			Ordering:     ordering,
			SearchFields: search,
		}, nil
	}
}

// localFilterExpressions resolves --filter names and appends --where expressions
func localFilterExpressions() ([]string, error) {
	expressions := make([]string, 0, len(savedFilters)+len(whereExprs))
	for _, name := range savedFilters {
		expr, ok := cfg.Filter[name]
		if !ok {
			return nil, fmt.Errorf("filter '%s' not found in config", name)
		}
		expressions = append(expressions, expr)
	}
	return append(expressions, whereExprs...), nil
}

// ticketCreateCmd creates a ticket
var ticketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket",
	Args:  cobra.NoArgs,
	RunE:  runTicketCreate,
}

func runTicketCreate(cmd *cobra.Command, args []string) error {
	var payload helpdesk.TicketCreate
	if payloadFile != "" {
		decoded, err := readTicketPayload(payloadFile)
		if err != nil {
			return err
		}
		if decoded.Create == nil {
			return fmt.Errorf("%s does not contain a creation payload (subject, description, requester and urgency are required)", payloadFile)
		}
		payload = *decoded.Create
	} else {
		if subject == "" || urgencyID == 0 {
			return fmt.Errorf("--subject and --urgency are required without --file")
		}
		payload = helpdesk.TicketCreate{
			Subject:     subject,
			Description: description,
			Urgency:     helpdesk.IdentRef{ID: helpdesk.ID(urgencyID)},
		}
		if requesterEmailC != "" {
			payload.Requester.Email = helpdesk.Set(requesterEmailC)
		}
		if requesterNameC != "" {
			payload.Requester.Name = helpdesk.Set(requesterNameC)
		}
		if templateID != 0 {
			payload.Template = helpdesk.Set(helpdesk.TemplateRef{ID: helpdesk.ID(templateID)})
		}
	}

	ticket, err := client.CreateTicket(cmd.Context(), payload)
	if err != nil {
		return err
	}

	logger.Info().Stringer("id", ticket.ID).Msg("Ticket created")
	return render(ticket, func() string { return formatter.FormatTicket(ticket) })
}

// ticketUpdateCmd applies a partial update
var ticketUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update ticket fields",
	Long:  `Update the subject, description or urgency of a ticket. Only flags that are given are sent.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketUpdate,
}

func runTicketUpdate(cmd *cobra.Command, args []string) error {
	id, err := helpdesk.ParseID(args[0])
	if err != nil {
		return err
	}

	var payload helpdesk.TicketUpdate
	if payloadFile != "" {
		decoded, err := readTicketPayload(payloadFile)
		if err != nil {
			return err
		}
		if decoded.Update == nil {
			return fmt.Errorf("%s contains a creation payload, not an update", payloadFile)
		}
		payload = *decoded.Update
	}

	flags := cmd.Flags()
	if flags.Changed("subject") {
		payload.Subject = helpdesk.Set(subject)
	}
	if flags.Changed("description") {
		payload.Description = helpdesk.Set(description)
	}
	if flags.Changed("urgency") {
		payload.Urgency = helpdesk.Set(helpdesk.IdentRef{ID: helpdesk.ID(urgencyID)})
	}

	ticket, err := client.UpdateTicket(cmd.Context(), id, payload)
	if err != nil {
		return err
	}

	logger.Info().Stringer("id", ticket.ID).Msg("Ticket updated")
	return render(ticket, func() string { return formatter.FormatTicket(ticket) })
}

func readTicketPayload(path string) (helpdesk.TicketPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return helpdesk.TicketPayload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return helpdesk.DecodeTicketPayload(data)
}

// ticketCancelCmd cancels tickets
var ticketCancelCmd = &cobra.Command{
	Use:   "cancel <id>...",
	Short: "Cancel one or more tickets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := client.CancelTicket(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to cancel ticket %s: %w", id, err)
			}
			logger.Info().Stringer("id", id).Msg("Ticket cancelled")
		}
		return nil
	},
}

// ticketAttachCmd uploads a file to a ticket
var ticketAttachCmd = &cobra.Command{
	Use:   "attach <id> <file>",
	Short: "Attach a file to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE:  runTicketAttach,
}

func runTicketAttach(cmd *cobra.Command, args []string) error {
	id, err := helpdesk.ParseID(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()

	upload := helpdesk.FileUpload{
		Filename:    filepath.Base(args[1]),
		ContentType: contentType,
		Content:     f,
		Field:       helpdesk.AttachmentField(attachField),
	}
	if upload.ContentType == "" {
		upload.ContentType = mime.TypeByExtension(filepath.Ext(args[1]))
	}
	if upload.Field != "" && !upload.Field.Valid() {
		return fmt.Errorf("invalid --field: %s (must be '%s' or '%s')",
			attachField, helpdesk.AttachmentFieldInput, helpdesk.AttachmentFieldLegacy)
	}

	attachment, err := client.AttachFile(cmd.Context(), id, upload)
	if err != nil {
		return err
	}

	logger.Info().Stringer("ticket", id).Str("name", attachment.Name).Msg("File attached")
	return render(attachment, func() string { return formatter.FormatAttachment(attachment) })
}

// ticketNoteCmd adds a note to a ticket
var ticketNoteCmd = &cobra.Command{
	Use:   "note <id>",
	Short: "Add a note to a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := helpdesk.ParseID(args[0])
		if err != nil {
			return err
		}

		note, err := client.AddNote(cmd.Context(), id, helpdesk.NoteCreate{
			Description:         noteText,
			ShowToRequester:     showToRequester,
			MarkFirstResponse:   markFirstResponse,
			AddToLinkedRequests: addToLinkedRequests,
		})
		if err != nil {
			return err
		}
		return render(note, func() string { return formatter.FormatNote(note) })
	},
}

// ticketResolutionCmd shows the resolution of a ticket
var ticketResolutionCmd = &cobra.Command{
	Use:   "resolution <id>",
	Short: "Show the resolution of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := helpdesk.ParseID(args[0])
		if err != nil {
			return err
		}

		resolution, err := client.GetResolution(cmd.Context(), id)
		if err != nil {
			return err
		}
		if resolution == nil {
			fmt.Printf("Ticket #%s has no resolution.\n", id)
			return nil
		}
		return render(resolution, func() string { return formatter.FormatResolution(resolution) })
	},
}
