// Package workflow advances tasks through fixed, linearly ordered stages.
//
// A stage pairs an entry condition with actions applied on entry. Where the
// current stage lives (the task's section, an enum custom field, or the
// external data blob) is a StageManager concern, so new storage schemes
// only need a new manager.
package workflow
