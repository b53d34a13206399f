package task

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MinDescriptionLength is the minimum description length, in characters,
// accepted when editing a task. Creation only requires a non-empty description.
const MinDescriptionLength = 4

// User-facing validation messages.
const (
	MsgDescriptionRequired = "Please enter a task description."
	MsgDescriptionTooShort = "Task description must be at least 4 characters long."
	MsgInvalidProgress     = "Progress must be a whole number."
	MsgInvalidPriority     = "Priority must be one of VERY_LOW, LOW, MEDIUM, HIGH, VERY_HIGH or CRITICAL."
)

// ValidationError reports invalid user input. Message is safe to show to
// the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateNewDescription checks the description submitted when creating or
// toggling a task.
func ValidateNewDescription(description string) error {
	if description == "" {
		return &ValidationError{Field: "description", Message: MsgDescriptionRequired}
	}
	return nil
}

// ValidateEditDescription checks the description submitted when editing a task.
func ValidateEditDescription(description string) error {
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return &ValidationError{Field: "description", Message: MsgDescriptionTooShort}
	}
	return nil
}

// EditForm is the raw input of an edit submission.
type EditForm struct {
	Description string
	// Priority is kept as submitted. It is not checked against the
	// declared priorities.
	Priority string
	Progress string
	// Completed is true when the completed checkbox was submitted as "on".
	Completed bool
}

// Fields validates the form and resolves the values to persist.
//
// Resolution order:
//  1. progress == 100 marks the task completed
//  2. a checked completed box forces progress to 100
//  3. completed is then set from the checkbox alone
//
// Step 3 overrides step 1, so progress 100 with the box unchecked is stored
// as not completed.
func (f EditForm) Fields() (Fields, error) {
	if err := ValidateEditDescription(f.Description); err != nil {
		return Fields{}, err
	}

	progress, err := strconv.Atoi(strings.TrimSpace(f.Progress))
	if err != nil {
		return Fields{}, &ValidationError{Field: "progress", Message: MsgInvalidProgress}
	}

	fields := Fields{
		Description: f.Description,
		Priority:    Priority(f.Priority),
		Progress:    progress,
	}

	if fields.Progress == 100 {
		fields.Completed = true
	}

	if f.Completed {
		fields.Progress = 100
	}

	fields.Completed = f.Completed

	return fields, nil
}

// FormFor returns an EditForm prefilled with the current values of t.
func FormFor(t Task) EditForm {
	return EditForm{
		Description: t.Description,
		Priority:    string(t.Priority),
		Progress:    strconv.Itoa(t.Progress),
		Completed:   t.Completed,
	}
}
