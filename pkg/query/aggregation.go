package query

import (
	"fintrack-backend/infrastructure/persistence/store"
)

// Defaults substituted for transactions with no linked category.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#9CA3AF"
	UncategorizedIcon  = "tag"
)

// ownerFilter is the match stage shared by every report pipeline: scope to
// the owning user, optionally to a transaction type, optionally to a date
// range.
func ownerFilter(userID, txType string, r DateRange) store.Filter {
	filter := store.Filter{"userId": userID}
	if txType != "" {
		filter["type"] = txType
	}
	for k, v := range RangeFilter(r, "date") {
		filter[k] = v
	}
	return filter
}

// SummaryPipeline totals a user's transactions per type (expense, income)
// within the range: sum, average, and count of amounts.
func SummaryPipeline(userID string, r DateRange) []store.Stage {
	return []store.Stage{
		store.Match{Filter: ownerFilter(userID, "", r)},
		store.Group{
			Key: store.GroupKey{Field: "type"},
			Accumulate: []store.Accumulator{
				{As: "total", Op: store.AccSum, Field: "amount"},
				{As: "average", Op: store.AccAvg, Field: "amount"},
				{As: "count", Op: store.AccCount},
			},
		},
		store.SortStage{Field: "_id", Order: store.Asc},
	}
}

// CategorySummaryPipeline breaks a user's transactions down per category,
// joining category metadata and substituting the Uncategorized defaults for
// transactions with no linked category. Rows are ordered by total descending.
func CategorySummaryPipeline(userID, txType string, r DateRange) []store.Stage {
	return []store.Stage{
		store.Match{Filter: ownerFilter(userID, txType, r)},
		store.Group{
			Key: store.GroupKey{Field: "categoryId"},
			Accumulate: []store.Accumulator{
				{As: "total", Op: store.AccSum, Field: "amount"},
				{As: "count", Op: store.AccCount},
			},
		},
		store.Lookup{
			From:         "categories",
			LocalField:   "_id",
			ForeignField: "id",
			As:           "category",
		},
		store.Project{Fields: []store.Projection{
			{As: "categoryId", Path: "_id"},
			{As: "categoryName", Path: "category.name", Default: UncategorizedName},
			{As: "color", Path: "category.color", Default: UncategorizedColor},
			{As: "icon", Path: "category.icon", Default: UncategorizedIcon},
			{As: "total", Path: "total"},
			{As: "count", Path: "count"},
		}},
		store.SortStage{Field: "total", Order: store.Desc},
	}
}

// TimeSeriesPipeline buckets a user's transactions chronologically by
// calendar unit, summing amounts per bucket. Buckets come back in ascending
// time order.
func TimeSeriesPipeline(userID, txType string, r DateRange, g store.Granularity) []store.Stage {
	return []store.Stage{
		store.Match{Filter: ownerFilter(userID, txType, r)},
		store.Group{
			Key: store.GroupKey{Field: "date", Bucket: g},
			Accumulate: []store.Accumulator{
				{As: "total", Op: store.AccSum, Field: "amount"},
				{As: "count", Op: store.AccCount},
			},
		},
		store.SortStage{Field: "_id", Order: store.Asc},
	}
}
