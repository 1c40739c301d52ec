package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Step narrows the current selection to its first descendant matching Tag
// plus either every class in Class or the attribute Attr equal to Value
type Step struct {
	Tag   string
	Class string
	Attr  string
	Value string
}

// Selector renders the step as a CSS selector
func (s Step) Selector() string {
	var b strings.Builder
	b.WriteString(s.Tag)
	for _, class := range strings.Fields(s.Class) {
		b.WriteString(".")
		b.WriteString(class)
	}
	if s.Attr != "" {
		if s.Value == "" {
			fmt.Fprintf(&b, "[%s]", s.Attr)
		} else {
			fmt.Fprintf(&b, "[%s=%q]", s.Attr, s.Value)
		}
	}
	return b.String()
}

func (s Step) String() string {
	return s.Selector()
}

// Path is an ordered list of steps from the document down to one element
type Path []Step

const (
	// CalendarComponent is the data-react-class of the calendar widget
	CalendarComponent = "Calendar"
	// PropsAttr holds the widget's JSON-encoded initial state
	PropsAttr = "data-react-props"
)

// CalendarPath locates the calendar widget on the economic-calendar page
var CalendarPath = Path{
	{Tag: "body", Class: "cardified"},
	{Tag: "div", Class: "site-content"},
	{Tag: "div", Class: "layout layout-one-column"},
	{Tag: "section", Class: "calendar-events-index"},
	{Tag: "div", Attr: "data-react-class", Value: CalendarComponent},
}

// descend moves one level down the path, keeping the first match
func descend(sel *goquery.Selection, step Step) (*goquery.Selection, error) {
	next := sel.Find(step.Selector()).First()
	if next.Length() == 0 {
		return nil, &ExtractionError{Step: step.String(), Reason: "element not found"}
	}
	return next, nil
}

// Resolve walks every step of the path starting at sel
func (p Path) Resolve(sel *goquery.Selection) (*goquery.Selection, error) {
	if len(p) == 0 {
		return nil, &ExtractionError{Reason: "empty markup path"}
	}

	cur := sel
	for _, step := range p {
		next, err := descend(cur, step)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
