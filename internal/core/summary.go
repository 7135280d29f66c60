package core

// CategoryShare is a category total together with its share of the overall total.
type CategoryShare struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
	Percent  float64  `json:"percent"` // one decimal place
}

// PayerAmount is a total attributed to a single team member.
type PayerAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Summary holds the headline figures shown on the dashboard.
type Summary struct {
	Total              Money `json:"total"`
	Transactions       int   `json:"transactions"`
	Members            int   `json:"members"`
	AveragePerMember   Money `json:"averagePerMember"`
	AveragePerCategory Money `json:"averagePerCategory"` // over categories with records
}
