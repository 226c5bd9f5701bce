package asana

import "triage/internal/textutil"

// FindCustomField returns the first custom field on the task with a matching
// name, or nil.
func FindCustomField(fields []CustomField, name string) *CustomField {
	for i := range fields {
		if textutil.EqualNames(fields[i].Name, name) {
			return &fields[i]
		}
	}
	return nil
}

// FindEnumOption returns the first enum option with a matching name, or nil.
func FindEnumOption(options []EnumOption, name string) *EnumOption {
	for i := range options {
		if textutil.EqualNames(options[i].Name, name) {
			return &options[i]
		}
	}
	return nil
}

// FindSection returns the first section with a matching name, or nil.
func FindSection(sections []*Section, name string) *Section {
	for _, section := range sections {
		if textutil.EqualNames(section.Name, name) {
			return section
		}
	}
	return nil
}
