package reminders

import (
	"html"
	"strings"
)

// DateLayout renders due dates as "Www Mmm DD YYYY" regardless of locale.
const DateLayout = "Mon Jan 02 2006"

const (
	subjectOverdue  = "Overdue library books"
	subjectUpcoming = "Upcoming due library books"

	headingDueSoon = "The following books are due soon:"
	headingOverdue = "The following books are overdue:"
	closing        = "Please return or renew them at your earliest convenience."
	signature      = "— Kit Librarian"
)

// Email is the rendered content of one reminder.
type Email struct {
	Subject string
	Text    string
	HTML    string
}

func itemLine(it Item) string {
	return it.Title + " by " + it.Author + " (Due: " + it.DueDate.Format(DateLayout) + ")"
}

// Render builds the reminder for a batch. It is deterministic and does no I/O.
func Render(b Batch) Email {
	subject := subjectUpcoming
	if len(b.Overdue) > 0 {
		subject = subjectOverdue
	}

	lines := []string{"Hello " + b.Borrower.Name + ","}
	var h strings.Builder
	h.WriteString("<p>Hello " + html.EscapeString(b.Borrower.Name) + ",</p>")

	section := func(heading string, items []Item) {
		if len(items) == 0 {
			return
		}
		lines = append(lines, "\n"+heading)
		h.WriteString("<p>" + heading + "</p><ul>")
		for _, it := range items {
			lines = append(lines, "- "+itemLine(it))
			h.WriteString("<li>" + html.EscapeString(itemLine(it)) + "</li>")
		}
		h.WriteString("</ul>")
	}
	section(headingDueSoon, b.DueSoon)
	section(headingOverdue, b.Overdue)

	lines = append(lines, "\n"+closing, "\n"+signature)
	h.WriteString("<p>" + closing + "</p><p>" + signature + "</p>")

	return Email{Subject: subject, Text: strings.Join(lines, "\n"), HTML: h.String()}
}
