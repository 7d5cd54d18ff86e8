package services

import (
	"time"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// sampleFilings returns the built-in 10-K excerpt corpus loaded on first
// run. IDs are stable so re-seeding an emptied store is deterministic.
func sampleFilings() []domain.Document {
	now := time.Now()
	mk := func(id, company, filingType string, year int, section, content string) domain.Document {
		return domain.Document{
			ID:      id,
			Title:   company,
			Content: content,
			Metadata: map[string]any{
				"company":     company,
				"filing_type": filingType,
				"year":        year,
				"section":     section,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	return []domain.Document{
		mk("AAPL_2023_10K_1", "Apple Inc.", "10-K", 2023, "Financial Performance",
			"Apple Inc. reported total net sales of $394.3 billion for fiscal 2023, "+
				"compared to $365.8 billion for fiscal 2022. iPhone sales represented "+
				"$200.6 billion of total revenue."),
		mk("MSFT_2023_10K_1", "Microsoft Corporation", "10-K", 2023, "Revenue",
			"Microsoft Corporation's revenue was $211.9 billion for fiscal year 2023, "+
				"an increase of 7% compared to fiscal year 2022. Azure and other cloud "+
				"services revenue grew 27%."),
		mk("GOOGL_2023_10K_1", "Alphabet Inc.", "10-K", 2023, "Business Overview",
			"Alphabet Inc.'s revenues were $307.4 billion for the year ended "+
				"December 31, 2023, compared to $282.8 billion in the prior year. "+
				"Google Search revenues were $175.0 billion."),
		mk("TSLA_2023_10K_1", "Tesla Inc.", "10-K", 2023, "Automotive Sales",
			"Tesla, Inc. automotive revenues were $82.4 billion for the year ended "+
				"December 31, 2023, compared to $71.5 billion for the year ended "+
				"December 31, 2022."),
		mk("NVDA_2023_10K_1", "NVIDIA Corporation", "10-K", 2024, "Financial Results",
			"NVIDIA Corporation's revenue for fiscal 2024 was a record $60.9 billion, "+
				"up 126% from the previous year. Data Center revenue was $47.5 billion, "+
				"up 217% from the prior year."),
	}
}
