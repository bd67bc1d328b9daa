// Package taskform validates task edits and submits them as update mutations.
package taskform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"teamsync/internal/service"
)

// Unassigned is the assignee sentinel meaning "no assignee".
const Unassigned = "unassigned"

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Values are the editable fields of a task.
type Values struct {
	Title       string           `valid:"required~Title is required,runelength(1|255)~Title is too long"`
	Description string           `valid:"-"`
	Priority    service.Priority `valid:"required~Priority is required,in(LOW|MEDIUM|HIGH)~Invalid priority"`
	Status      service.Status   `valid:"required~Status is required,in(BACKLOG|TODO|IN_PROGRESS|IN_REVIEW|DONE)~Invalid status"`
	AssignedTo  string           `valid:"-"`
	DueDate     *time.Time       `valid:"-"`
}

// ValidationError lists field messages. It is never sent to the server.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return strings.Join(parts, "; ")
}

// Defaults returns the form values for editing task.
func Defaults(task service.Task) Values {
	v := Values{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		AssignedTo:  Unassigned,
	}
	if task.AssignedTo != nil && task.AssignedTo.ID != "" {
		v.AssignedTo = task.AssignedTo.ID
	}
	if task.DueDate != nil {
		due := *task.DueDate
		v.DueDate = &due
	}
	return v
}

// Validate checks required fields, lengths and enum membership.
func (v Values) Validate() error {
	ok, err := govalidator.ValidateStruct(v)
	if ok && err == nil {
		return nil
	}

	fields := make(map[string]string)
	for name, msg := range govalidator.ErrorsByField(err) {
		fields[strings.ToLower(name)] = msg
	}
	if len(fields) == 0 && err != nil {
		fields["form"] = err.Error()
	}
	return &ValidationError{Fields: fields}
}

// PickDueDate sets the due date. Days before today (relative to now) are rejected.
func (v *Values) PickDueDate(d, now time.Time) error {
	y, m, day := now.Date()
	startOfToday := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	if d.Before(startOfToday) {
		return &ValidationError{Fields: map[string]string{"duedate": "Due date cannot be in the past"}}
	}
	v.DueDate = &d
	return nil
}

// Update maps the values to an update payload. The unassigned sentinel leaves
// the assignee out; the due date is serialized as an ISO-8601 UTC string.
func (v Values) Update() service.TaskUpdate {
	title := v.Title
	description := v.Description
	priority := v.Priority
	status := v.Status

	u := service.TaskUpdate{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		Status:      &status,
	}
	if v.AssignedTo != "" && v.AssignedTo != Unassigned {
		assignee := v.AssignedTo
		u.AssignedTo = &assignee
	}
	if v.DueDate != nil {
		due := v.DueDate.UTC().Format(isoLayout)
		u.DueDate = &due
	}
	return u
}

// ResolveAssignee maps user input to a member id or Unassigned. Input may be a
// member id or a case-insensitive member name.
func ResolveAssignee(members []service.Member, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, Unassigned) {
		return Unassigned, nil
	}

	for _, m := range members {
		if m.ID == input {
			return m.ID, nil
		}
	}

	var matches []service.Member
	for _, m := range members {
		if strings.EqualFold(strings.TrimSpace(m.Name), input) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("member not found: %s", input)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("ambiguous member name: %s", input)
	}
}
