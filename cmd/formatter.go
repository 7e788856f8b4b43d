package cmd

import (
	"fmt"
	"strings"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

const dateLayout = "2006-01-02 15:04"

// ConsoleFormatter provides tree-style console output for helpdesk records
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// treeNode is one branch of a tree listing
type treeNode struct {
	title string
	lines []string
}

// writeTree renders nodes under a counted header
func writeTree(sb *strings.Builder, noun string, nodes []treeNode) {
	if len(nodes) != 1 {
		noun = plural(noun)
	}
	fmt.Fprintf(sb, "\n%s (%d):\n\n", noun, len(nodes))

	for i, node := range nodes {
		isLast := i == len(nodes)-1
		prefix := "├"
		indent := "│   "
		if isLast {
			prefix = "╰"
			indent = "    "
		}

		fmt.Fprintf(sb, "%s── %s\n", prefix, node.title)
		for _, line := range node.lines {
			fmt.Fprintf(sb, "%s%s\n", indent, line)
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
}

func plural(noun string) string {
	if stem, ok := strings.CutSuffix(noun, "y"); ok {
		return stem + "ies"
	}
	return noun + "s"
}

func formatDate(d *helpdesk.DateTime) string {
	if d == nil || d.Value.IsZero() {
		return ""
	}
	return d.Value.Local().Format(dateLayout)
}

func ticketNode(t *helpdesk.Ticket) treeNode {
	node := treeNode{title: fmt.Sprintf("#%s %s", t.ID, t.Subject)}

	status := fmt.Sprintf("Status: %s | Group: %s", t.Status.Name, t.Group.Name)
	if t.Urgency != nil {
		status += " | Urgency: " + t.Urgency.Name
	}
	node.lines = append(node.lines, status)

	people := "Requester: " + t.Requester.DisplayName()
	if t.Technician != nil {
		people += " | Technician: " + t.Technician.DisplayName()
	}
	node.lines = append(node.lines, people)

	var dates []string
	if created := formatDate(&t.CreatedTime); created != "" {
		dates = append(dates, "Created: "+created)
	}
	if due := formatDate(t.DueByTime); due != "" {
		dates = append(dates, "Due: "+due)
	}
	if len(dates) > 0 {
		node.lines = append(node.lines, strings.Join(dates, " | "))
	}

	if len(t.Attachments) > 0 {
		names := make([]string, len(t.Attachments))
		for i, a := range t.Attachments {
			names[i] = a.Name
		}
		node.lines = append(node.lines, "Attachments: "+strings.Join(names, ", "))
	}
	return node
}

// FormatTicketList formats a page of tickets
func (f *ConsoleFormatter) FormatTicketList(tickets []helpdesk.Ticket, info *helpdesk.PageInfo) string {
	if len(tickets) == 0 {
		return "No tickets found\n"
	}

	nodes := make([]treeNode, len(tickets))
	for i := range tickets {
		nodes[i] = ticketNode(&tickets[i])
	}

	var sb strings.Builder
	writeTree(&sb, "Ticket", nodes)
	if info != nil {
		if next, ok := info.NextOffset(); ok {
			fmt.Fprintf(&sb, "More tickets available, continue with --offset %d\n", next)
		}
	}
	return sb.String()
}

// FormatTicket formats a single ticket with its description
func (f *ConsoleFormatter) FormatTicket(t *helpdesk.Ticket) string {
	node := ticketNode(t)
	if t.Description != "" {
		node.lines = append(node.lines, "", helpdesk.StripHTMLTags(t.Description))
	}

	var sb strings.Builder
	writeTree(&sb, "Ticket", []treeNode{node})
	return sb.String()
}

// FormatAttachment formats an uploaded or listed attachment
func (f *ConsoleFormatter) FormatAttachment(a *helpdesk.Attachment) string {
	var sb strings.Builder
	writeTree(&sb, "Attachment", []treeNode{attachmentNode(a)})
	return sb.String()
}

func attachmentNode(a *helpdesk.Attachment) treeNode {
	node := treeNode{title: fmt.Sprintf("#%s %s", a.ID, a.Name)}
	if a.Size.DisplayValue != "" {
		node.lines = append(node.lines, "Size: "+a.Size.DisplayValue)
	}
	node.lines = append(node.lines, "URL: "+a.ContentURL)
	if on := formatDate(&a.AttachedOn); on != "" {
		node.lines = append(node.lines, fmt.Sprintf("Attached by %s on %s", a.AttachedBy.DisplayName(), on))
	}
	return node
}

// FormatNote formats a ticket note
func (f *ConsoleFormatter) FormatNote(n *helpdesk.Note) string {
	node := treeNode{title: fmt.Sprintf("Note #%s", n.ID)}
	added := "Added by " + n.AddedBy.DisplayName()
	if on := formatDate(&n.AddedTime); on != "" {
		added += " on " + on
	}
	if n.ShowToRequester {
		added += " (visible to requester)"
	}
	node.lines = append(node.lines, added, helpdesk.StripHTMLTags(n.Description))

	var sb strings.Builder
	writeTree(&sb, "Note", []treeNode{node})
	return sb.String()
}

// FormatResolution formats a ticket resolution and its attachments
func (f *ConsoleFormatter) FormatResolution(r *helpdesk.Resolution) string {
	node := treeNode{title: "Submitted by " + r.SubmittedBy.DisplayName()}
	if on := formatDate(&r.SubmittedOn); on != "" {
		node.title += " on " + on
	}
	node.lines = append(node.lines, r.Content)
	for _, a := range r.Attachments {
		node.lines = append(node.lines, fmt.Sprintf("Attachment: %s (%s)", a.Name, a.ContentURL))
	}

	var sb strings.Builder
	writeTree(&sb, "Resolution", []treeNode{node})
	return sb.String()
}

// FormatTemplates formats request templates
func (f *ConsoleFormatter) FormatTemplates(templates []helpdesk.Template) string {
	if len(templates) == 0 {
		return "No templates found\n"
	}

	nodes := make([]treeNode, len(templates))
	for i, t := range templates {
		nodes[i] = templateNode(t)
	}

	var sb strings.Builder
	writeTree(&sb, "Template", nodes)
	return sb.String()
}

func templateNode(t helpdesk.Template) treeNode {
	node := treeNode{title: fmt.Sprintf("#%s %s", t.ID, t.Name)}

	var flags []string
	if t.IsServiceTemplate {
		flags = append(flags, "service")
	}
	if t.IsDefaultTemplate {
		flags = append(flags, "default")
	}
	if !t.IsEnabled || t.Inactive {
		flags = append(flags, "disabled")
	}
	if t.IsDeleted {
		flags = append(flags, "deleted")
	}
	if len(flags) > 0 {
		node.lines = append(node.lines, "Flags: "+strings.Join(flags, ", "))
	}
	if t.Description != "" {
		node.lines = append(node.lines, t.Description)
	}
	return node
}

// catalogEntry is a reference-list row shared by categories, subcategories
// and urgencies
type catalogEntry struct {
	ID          helpdesk.ID
	Name        string
	Description string
	Parent      string
	Deleted     bool
}

// FormatCatalog formats a reference list under noun
func (f *ConsoleFormatter) FormatCatalog(noun string, entries []catalogEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No %s found\n", strings.ToLower(plural(noun)))
	}

	nodes := make([]treeNode, len(entries))
	for i, e := range entries {
		title := fmt.Sprintf("#%s %s", e.ID, e.Name)
		if e.Deleted {
			title += " [DELETED]"
		}
		nodes[i] = treeNode{title: title}
		if e.Parent != "" {
			nodes[i].lines = append(nodes[i].lines, "Category: "+e.Parent)
		}
		if e.Description != "" {
			nodes[i].lines = append(nodes[i].lines, e.Description)
		}
	}

	var sb strings.Builder
	writeTree(&sb, noun, nodes)
	return sb.String()
}

func categoryEntries(categories []helpdesk.Category) []catalogEntry {
	entries := make([]catalogEntry, len(categories))
	for i, c := range categories {
		entries[i] = catalogEntry{ID: c.ID, Name: c.Name, Description: c.Description, Deleted: c.IsDeleted}
	}
	return entries
}

func subcategoryEntries(subcategories []helpdesk.Subcategory) []catalogEntry {
	entries := make([]catalogEntry, len(subcategories))
	for i, s := range subcategories {
		entries[i] = catalogEntry{ID: s.ID, Name: s.Name, Description: s.Description, Parent: s.Category.Name, Deleted: s.IsDeleted}
	}
	return entries
}

func urgencyEntries(urgencies []helpdesk.Urgency) []catalogEntry {
	entries := make([]catalogEntry, len(urgencies))
	for i, u := range urgencies {
		entries[i] = catalogEntry{ID: u.ID, Name: u.Name, Description: u.Description, Deleted: u.IsDeleted}
	}
	return entries
}
