package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutePipeline_MatchThenLimit(t *testing.T) {
	docs := []Document{
		{"id": "a", "type": "expense"},
		{"id": "b", "type": "income"},
		{"id": "c", "type": "expense"},
	}

	out, err := ExecutePipeline(docs, []Stage{
		Match{Filter: Filter{"type": "expense"}},
		LimitStage{N: 1},
	}, nil)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["id"])
}

func TestExecutePipeline_GroupAccumulators(t *testing.T) {
	docs := []Document{
		{"type": "expense", "amount": 10.0},
		{"type": "expense", "amount": 30.0},
		{"type": "income", "amount": 100.0},
	}

	out, err := ExecutePipeline(docs, []Stage{
		Group{
			Key: GroupKey{Field: "type"},
			Accumulate: []Accumulator{
				{As: "total", Op: AccSum, Field: "amount"},
				{As: "average", Op: AccAvg, Field: "amount"},
				{As: "count", Op: AccCount},
				{As: "min", Op: AccMin, Field: "amount"},
				{As: "max", Op: AccMax, Field: "amount"},
			},
		},
		SortStage{Field: "_id", Order: Asc},
	}, nil)

	require.NoError(t, err)
	require.Len(t, out, 2)
	expense := out[0]
	assert.Equal(t, "expense", expense["_id"])
	assert.Equal(t, 40.0, expense["total"])
	assert.Equal(t, 20.0, expense["average"])
	assert.Equal(t, 2, expense["count"])
	assert.Equal(t, 10.0, expense["min"])
	assert.Equal(t, 30.0, expense["max"])
}

func TestExecutePipeline_GroupAllIntoOne(t *testing.T) {
	docs := []Document{
		{"amount": 10.0},
		{"amount": 20.0},
	}

	out, err := ExecutePipeline(docs, []Stage{
		Group{
			Key:        GroupKey{},
			Accumulate: []Accumulator{{As: "total", Op: AccSum, Field: "amount"}},
		},
	}, nil)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0]["_id"])
	assert.Equal(t, 30.0, out[0]["total"])
}

func TestExecutePipeline_GroupNilKeysFoldTogether(t *testing.T) {
	docs := []Document{
		{"categoryId": nil, "amount": 1.0},
		{"categoryId": "c1", "amount": 2.0},
		{"categoryId": nil, "amount": 3.0},
	}

	out, err := ExecutePipeline(docs, []Stage{
		Group{
			Key:        GroupKey{Field: "categoryId"},
			Accumulate: []Accumulator{{As: "total", Op: AccSum, Field: "amount"}},
		},
	}, nil)

	require.NoError(t, err)
	require.Len(t, out, 2)

	totals := map[any]any{}
	for _, d := range out {
		totals[d["_id"]] = d["total"]
	}
	assert.Equal(t, 4.0, totals[nil])
	assert.Equal(t, 2.0, totals["c1"])
}

func TestExecutePipeline_GroupByTimeBucketRequiresTime(t *testing.T) {
	docs := []Document{{"date": "not a date"}}

	_, err := ExecutePipeline(docs, []Stage{
		Group{Key: GroupKey{Field: "date", Bucket: Daily}},
	}, nil)

	assert.Error(t, err)
}

func TestExecutePipeline_Lookup(t *testing.T) {
	docs := []Document{
		{"_id": "c1", "total": 10.0},
		{"_id": nil, "total": 5.0},
		{"_id": "missing", "total": 1.0},
	}
	categories := []Document{
		{"id": "c1", "name": "Groceries"},
	}

	out, err := ExecutePipeline(docs, []Stage{
		Lookup{From: "categories", LocalField: "_id", ForeignField: "id", As: "category"},
	}, func(name string) ([]Document, error) {
		require.Equal(t, "categories", name)
		return categories, nil
	})

	require.NoError(t, err)
	joined, ok := out[0]["category"].(Document)
	require.True(t, ok)
	assert.Equal(t, "Groceries", joined["name"])
	assert.Nil(t, out[1]["category"]) // nil local value never joins
	assert.Nil(t, out[2]["category"])
}

func TestExecutePipeline_LookupWithoutResolver(t *testing.T) {
	_, err := ExecutePipeline([]Document{{"a": 1}}, []Stage{
		Lookup{From: "categories", LocalField: "a", ForeignField: "id", As: "x"},
	}, nil)

	assert.Error(t, err)
}

func TestExecutePipeline_ProjectWithDefaults(t *testing.T) {
	docs := []Document{
		{"_id": "c1", "category": Document{"name": "Rent"}, "total": 100.0},
		{"_id": nil, "category": nil, "total": 5.0},
	}

	out, err := ExecutePipeline(docs, []Stage{
		Project{Fields: []Projection{
			{As: "categoryName", Path: "category.name", Default: "Uncategorized"},
			{As: "total", Path: "total"},
		}},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, Document{"categoryName": "Rent", "total": 100.0}, out[0])
	assert.Equal(t, Document{"categoryName": "Uncategorized", "total": 5.0}, out[1])
}

func TestBucketLabel(t *testing.T) {
	friday := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-15", bucketLabel(friday, Daily))
	assert.Equal(t, "2024-03-10", bucketLabel(friday, Weekly)) // most recent Sunday
	assert.Equal(t, "2024-03", bucketLabel(friday, Monthly))

	sunday := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-10", bucketLabel(sunday, Weekly))
}
