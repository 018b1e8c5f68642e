package claim

import (
	"claimflow/bizerror"
	"errors"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	itemValidator = validator.New()

	// MaxItemHours is the largest hours value a single item column holds.
	MaxItemHours = decimal.RequireFromString("99.99")
)

// AddItem validates the entry and appends it to the draft claim. Totals are not recomputed.
func AddItem(c *MonthlyClaim, id types.ID, entry ItemEntry, now types.Timestamp) (*ClaimItem, error) {
	if !CanBeEdited(c) {
		return nil, &bizerror.NotEditableError{ClaimID: c.ID, Status: c.Status}
	}
	entry.Description = strings.TrimSpace(entry.Description)
	if err := validateEntry(&entry); err != nil {
		return nil, err
	}

	item := ClaimItem{
		ID:          id,
		ClaimID:     c.ID,
		WorkDate:    types.Timestamp(entry.WorkDate.Time().UTC()),
		Description: entry.Description,
		HoursWorked: entry.HoursWorked,
		HourlyRate:  entry.HourlyRate,
		CreateTime:  now,
	}
	c.Items = append(c.Items, item)
	return &item, nil
}

// RemoveItem removes an item from the draft claim. Totals are not recomputed.
func RemoveItem(c *MonthlyClaim, itemID types.ID) (*ClaimItem, error) {
	if !CanBeEdited(c) {
		return nil, &bizerror.NotEditableError{ClaimID: c.ID, Status: c.Status}
	}
	for idx, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:idx:idx], c.Items[idx+1:]...)
			return &item, nil
		}
	}
	return nil, &bizerror.NotFoundError{Kind: "claim item", ID: itemID}
}

// ItemAmount is hours times rate, rounded half-up to cents.
func ItemAmount(item ClaimItem) decimal.Decimal {
	return item.HoursWorked.Mul(item.HourlyRate).Round(2)
}

func validateEntry(entry *ItemEntry) error {
	if err := itemValidator.Struct(entry); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return &bizerror.ValidationError{Field: lowerFirst(fe.Field()), Reason: describeTag(fe)}
		}
		return err
	}
	if entry.WorkDate.Time().IsZero() {
		return &bizerror.ValidationError{Field: "workDate", Reason: "is required"}
	}
	if !entry.HoursWorked.IsPositive() {
		return &bizerror.ValidationError{Field: "hoursWorked", Reason: "must be greater than 0"}
	}
	if entry.HoursWorked.GreaterThan(MaxItemHours) {
		return &bizerror.ValidationError{Field: "hoursWorked", Reason: "must not exceed " + MaxItemHours.StringFixed(2)}
	}
	if !entry.HoursWorked.Round(2).Equal(entry.HoursWorked) {
		return &bizerror.ValidationError{Field: "hoursWorked", Reason: "must have at most 2 decimal places"}
	}
	if entry.HourlyRate.IsNegative() {
		return &bizerror.ValidationError{Field: "hourlyRate", Reason: "must not be negative"}
	}
	if !entry.HourlyRate.Round(2).Equal(entry.HourlyRate) {
		return &bizerror.ValidationError{Field: "hourlyRate", Reason: "must have at most 2 decimal places"}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
