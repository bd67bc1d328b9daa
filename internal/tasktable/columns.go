// Package tasktable renders task rows and owns the inline completion toggle.
package tasktable

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"teamsync/internal/output"
	"teamsync/internal/service"
)

// Column is one table column. Cell is a pure function of the row number
// (1-based) and the task.
type Column struct {
	ID     string
	Header string
	Cell   func(row int, task service.Task) string
}

// Columns returns the task table columns. The project column is omitted
// when the table is scoped to projectID.
func Columns(projectID string) []Column {
	cols := []Column{
		{ID: "row", Header: "#", Cell: func(row int, _ service.Task) string { return strconv.Itoa(row) }},
		{ID: "completed", Header: "Done", Cell: func(_ int, t service.Task) string { return Checkbox(t) }},
		{ID: "title", Header: "Title", Cell: func(_ int, t service.Task) string { return Title(t) }},
	}
	if projectID == "" {
		cols = append(cols, Column{ID: "project", Header: "Project", Cell: func(_ int, t service.Task) string { return Project(t) }})
	}
	return append(cols,
		Column{ID: "assignedTo", Header: "Assigned To", Cell: func(_ int, t service.Task) string { return Assignee(t) }},
		Column{ID: "dueDate", Header: "Due Date", Cell: func(_ int, t service.Task) string { return DueDate(t) }},
		Column{ID: "status", Header: "Status", Cell: func(_ int, t service.Task) string { return t.Status.Label() }},
		Column{ID: "priority", Header: "Priority", Cell: func(_ int, t service.Task) string { return t.Priority.Label() }},
	)
}

// Checkbox renders the completion state.
func Checkbox(t service.Task) string {
	if t.IsCompleted() {
		return "[x]"
	}
	return "[ ]"
}

// Title renders the task code badge followed by the title.
func Title(t service.Task) string {
	title := output.NormalizeTitle(t.Title)
	if t.TaskCode == "" {
		return title
	}
	return fmt.Sprintf("[%s] %s", t.TaskCode, title)
}

// Project renders the project emoji and name, or "" without a project.
func Project(t service.Task) string {
	if t.Project == nil {
		return ""
	}
	return strings.TrimSpace(t.Project.Emoji + " " + t.Project.Name)
}

// Assignee renders the assignee initials and name, or "" when unassigned.
func Assignee(t service.Task) string {
	if t.AssignedTo == nil || t.AssignedTo.Name == "" {
		return ""
	}
	return fmt.Sprintf("(%s) %s", Initials(t.AssignedTo.Name), t.AssignedTo.Name)
}

// Initials returns up to two upper-case initials of name, or "NA".
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, []rune(strings.ToUpper(word))[0])
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "NA"
	}
	return string(initials)
}

// DueDate renders the due date as "October 18th, 2026", or "" without one.
func DueDate(t service.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return FormatDate(*t.DueDate)
}

// FormatDate formats d as month, ordinal day and year.
func FormatDate(d time.Time) string {
	return fmt.Sprintf("%s %s, %d", d.Month(), humanize.Ordinal(d.Day()), d.Year())
}
