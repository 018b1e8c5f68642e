package claim

import "github.com/shopspring/decimal"

// Recompute derives the claim totals from its current items.
func Recompute(c *MonthlyClaim) {
	hours := decimal.Zero
	amount := decimal.Zero
	for _, item := range c.Items {
		hours = hours.Add(item.HoursWorked)
		amount = amount.Add(ItemAmount(item))
	}
	c.TotalHours = hours
	c.TotalAmount = amount
}

func CanBeEdited(c *MonthlyClaim) bool {
	return c.Status == StatusDraft
}

func CanBeSubmitted(c *MonthlyClaim) bool {
	return c.Status == StatusDraft && c.TotalHours.IsPositive()
}
