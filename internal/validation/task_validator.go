package validation

import (
	"strings"

	"task-list/internal/domain"
)

// FieldDelimiter separates the fields of a stored task line. Names may not contain it.
const FieldDelimiter = "|"

// DefaultNameMaxLength is used when no limit is configured.
const DefaultNameMaxLength = 255

// TaskValidator provides validation for task creation
type TaskValidator struct {
	validator     *Validator
	nameMaxLength int
}

// NewTaskValidator creates a task validator with the default name length limit
func NewTaskValidator() *TaskValidator {
	return NewTaskValidatorWithLimit(DefaultNameMaxLength)
}

// NewTaskValidatorWithLimit creates a task validator with a custom name length limit.
// A limit of zero or less disables the length check.
func NewTaskValidatorWithLimit(nameMaxLength int) *TaskValidator {
	return &TaskValidator{
		validator:     NewValidator(),
		nameMaxLength: nameMaxLength,
	}
}

// ValidateTaskName validates a task name for creation
func (tv *TaskValidator) ValidateTaskName(name string) error {
	validationError := NewValidationError()

	trimmedName := tv.validator.TrimAndValidateString(name)

	if !tv.validator.IsNonEmptyString(trimmedName) {
		validationError.AddRequiredError("name")
		return validationError
	}

	if !tv.validator.IsValidStringLength(trimmedName, 1, tv.nameMaxLength) {
		validationError.AddInvalidLengthError("name", trimmedName, 1, tv.nameMaxLength)
	}

	if tv.validator.ContainsFieldDelimiter(trimmedName) {
		validationError.AddInvalidCharacterError("name", trimmedName, "the '"+FieldDelimiter+"' character")
	}

	if tv.validator.ContainsLineBreak(trimmedName) {
		validationError.AddInvalidCharacterError("name", trimmedName, "line breaks")
	}

	if validationError.HasErrors() {
		return validationError
	}

	return nil
}

// ValidatePriority checks that a priority is one of High, Medium or Low
func (tv *TaskValidator) ValidatePriority(priority domain.Priority) error {
	if priority.IsKnown() {
		return nil
	}
	validationError := NewValidationError()
	validationError.AddInvalidValueError("priority", string(priority), "must be one of "+priorityLabels())
	return validationError
}

// ValidateTaskForCreation validates both fields of a new task, collecting every problem
func (tv *TaskValidator) ValidateTaskForCreation(name string, priority domain.Priority) error {
	validationError := NewValidationError()

	if err := tv.ValidateTaskName(name); err != nil {
		if nameErr, ok := err.(*ValidationError); ok {
			validationError.Errors = append(validationError.Errors, nameErr.Errors...)
		}
	}
	if err := tv.ValidatePriority(priority); err != nil {
		if priorityErr, ok := err.(*ValidationError); ok {
			validationError.Errors = append(validationError.Errors, priorityErr.Errors...)
		}
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

func priorityLabels() string {
	labels := make([]string, 0, 3)
	for _, p := range domain.Priorities() {
		labels = append(labels, string(p))
	}
	return strings.Join(labels, ", ")
}
