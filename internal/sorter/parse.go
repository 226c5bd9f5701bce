package sorter

import (
	"fmt"
	"strings"
)

// Parse builds a sorter from a config spec string. Supported forms:
//
//	likes[:asc|:desc]                 like count, most-liked first by default
//	due[:asc|:desc][:missing-first]   due date
//	start[:asc|:desc][:missing-first] start date
//	assignee=Name|Name|...            explicit assignee order, "" = unassigned
//	enum:Field=Option|Option|...      explicit enum option order, "" = unset
//	number:Field[:asc|:desc]          number custom field
func Parse(spec string) (Sorter, error) {
	head, list, hasList := strings.Cut(spec, "=")
	parts := strings.Split(head, ":")

	switch parts[0] {
	case "likes":
		ascending, _, err := parseFlags("likes", parts[1:], false, false)
		if err != nil {
			return nil, err
		}
		return ByLikes(ascending), nil
	case "due":
		ascending, missingFirst, err := parseFlags("due", parts[1:], true, true)
		if err != nil {
			return nil, err
		}
		return ByDueDate(ascending, missingFirst), nil
	case "start":
		ascending, missingFirst, err := parseFlags("start", parts[1:], true, true)
		if err != nil {
			return nil, err
		}
		return ByStartDate(ascending, missingFirst), nil
	case "assignee":
		if !hasList {
			return nil, fmt.Errorf("sorter %q: assignee needs an ordered name list", spec)
		}
		return ByAssignee(strings.Split(list, "|")), nil
	case "enum":
		if len(parts) != 2 || !hasList {
			return nil, fmt.Errorf("sorter %q: want enum:Field=Option|...", spec)
		}
		return ByEnumField(parts[1], strings.Split(list, "|")), nil
	case "number":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("sorter %q: want number:Field[:asc|:desc]", spec)
		}
		ascending, _, err := parseFlags("number", parts[2:], true, false)
		if err != nil {
			return nil, err
		}
		return ByNumberField(parts[1], ascending), nil
	}
	return nil, fmt.Errorf("unknown sorter %q", spec)
}

// ParseAll parses each spec and folds them into one multi-level sorter.
func ParseAll(specs []string) (Sorter, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no sorter specs")
	}
	combined, err := Parse(specs[0])
	if err != nil {
		return nil, err
	}
	for _, spec := range specs[1:] {
		next, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		combined = Then(combined, next)
	}
	return combined, nil
}

func parseFlags(kind string, flags []string, defaultAscending, allowMissing bool) (ascending, missingFirst bool, err error) {
	ascending = defaultAscending
	for _, flag := range flags {
		switch {
		case flag == "asc":
			ascending = true
		case flag == "desc":
			ascending = false
		case flag == "missing-first" && allowMissing:
			missingFirst = true
		default:
			return false, false, fmt.Errorf("sorter flag %q not valid for %s", flag, kind)
		}
	}
	return ascending, missingFirst, nil
}
