package ledger

import "teamledger/internal/core"

// DemoRoster is the team used by the demo data set.
func DemoRoster() []string {
	return []string{"John Doe", "Jane Smith", "Mike Johnson", "Sarah Williams"}
}

// DemoExpenses returns the sample records the dashboard ships with, newest first.
func DemoExpenses() []core.Expense {
	mk := func(id int64, y, m, d int, cat core.Category, desc string, cents int64, by, ref string) core.Expense {
		return core.Expense{
			ID:          id,
			Date:        core.NewDate(y, m, d),
			Category:    cat,
			Description: desc,
			Amount:      core.FromCents(cents),
			PaidBy:      by,
			HasReceipt:  ref != "",
			ReceiptRef:  ref,
		}
	}
	return []core.Expense{
		mk(1, 2024, 1, 15, core.Food, "Team Lunch", 12550, "John Doe", "https://images.unsplash.com/photo-1554224311-beee4ead2e18?w=400"),
		mk(2, 2024, 1, 14, core.Office, "Office Supplies", 8999, "Jane Smith", "https://images.unsplash.com/photo-1586528116311-ad8dd3c8310d?w=400"),
		mk(3, 2024, 1, 13, core.Travel, "Client Meeting", 45000, "Mike Johnson", "https://images.unsplash.com/photo-1436491865332-7a61a109cc05?w=400"),
		mk(4, 2024, 1, 12, core.Software, "Software License", 29900, "Sarah Williams", ""),
		mk(5, 2024, 1, 11, core.Food, "Coffee Meeting", 4575, "John Doe", "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=400"),
		mk(6, 2024, 1, 10, core.Travel, "Airport Transfer", 8500, "Mike Johnson", "https://images.unsplash.com/photo-1464037866556-6812c9d1c72e?w=400"),
		mk(7, 2024, 1, 9, core.Office, "Printer Paper", 3250, "Jane Smith", ""),
		mk(8, 2024, 1, 8, core.Food, "Team Dinner", 27580, "Sarah Williams", "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?w=400"),
	}
}
