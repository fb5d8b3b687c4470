package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stage is one step of an aggregation pipeline. Stages are typed rather than
// expressed in a query language so that every adapter can interpret the same
// pipeline, server-side or in process.
type Stage interface {
	stage()
}

// Match keeps only documents satisfying Filter.
type Match struct {
	Filter Filter
}

// Group folds documents into one output document per group key. The output
// carries the key under "_id" plus one field per accumulator.
type Group struct {
	Key        GroupKey
	Accumulate []Accumulator
}

// GroupKey identifies the grouping dimension. With an empty Field every
// document falls into a single group. When Bucket is set, Field must hold a
// time value and documents are grouped by calendar bucket; the "_id" becomes
// the bucket label (ISO date for day/week starts, "2006-01" for months) so a
// lexicographic sort is chronological.
type GroupKey struct {
	Field  string
	Bucket Granularity
}

// Granularity is a calendar bucket size for time-series grouping.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

// AccumulateOp is a fold operation inside a Group stage.
type AccumulateOp string

const (
	AccSum   AccumulateOp = "sum"
	AccAvg   AccumulateOp = "avg"
	AccCount AccumulateOp = "count"
	AccMin   AccumulateOp = "min"
	AccMax   AccumulateOp = "max"
)

// Accumulator computes one output field per group.
type Accumulator struct {
	As    string
	Op    AccumulateOp
	Field string // source field; ignored for AccCount
}

// Lookup left-joins the first document of From whose ForeignField equals the
// local document's LocalField, storing it (or nil) under As.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// Project reshapes documents to exactly the listed fields.
type Project struct {
	Fields []Projection
}

// Projection copies the value at Path (dot-separated for nested documents)
// into the output under As, falling back to Default when the path is missing
// or nil.
type Projection struct {
	As      string
	Path    string
	Default any
}

// SortStage orders documents by one field.
type SortStage struct {
	Field string
	Order SortOrder
}

// LimitStage truncates the document stream.
type LimitStage struct {
	N int
}

func (Match) stage()      {}
func (Group) stage()      {}
func (Lookup) stage()     {}
func (Project) stage()    {}
func (SortStage) stage()  {}
func (LimitStage) stage() {}

// CollectionResolver fetches all documents of a named collection; Lookup
// stages use it to reach their join target.
type CollectionResolver func(name string) ([]Document, error)

// ExecutePipeline interprets stages over docs. Adapters without native
// aggregation fetch candidate documents and delegate here, so the grouping,
// join, and projection semantics are identical across backends.
func ExecutePipeline(docs []Document, stages []Stage, resolve CollectionResolver) ([]Document, error) {
	var err error
	for _, s := range stages {
		switch st := s.(type) {
		case Match:
			docs = filterDocs(docs, st.Filter)
		case Group:
			docs, err = groupDocs(docs, st)
		case Lookup:
			docs, err = lookupDocs(docs, st, resolve)
		case Project:
			docs = projectDocs(docs, st)
		case SortStage:
			SortDocuments(docs, st.Field, st.Order)
		case LimitStage:
			if st.N >= 0 && len(docs) > st.N {
				docs = docs[:st.N]
			}
		default:
			return nil, fmt.Errorf("unsupported pipeline stage %T", s)
		}
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func filterDocs(docs []Document, filter Filter) []Document {
	out := docs[:0:0]
	for _, d := range docs {
		if MatchFilter(d, filter) {
			out = append(out, d)
		}
	}
	return out
}

type groupState struct {
	id     any
	sums   map[string]float64
	mins   map[string]any
	maxs   map[string]any
	counts map[string]int
	n      int
}

func groupDocs(docs []Document, st Group) ([]Document, error) {
	groups := make(map[string]*groupState)
	order := make([]string, 0)

	for _, d := range docs {
		id, mapKey, err := groupKeyOf(d, st.Key)
		if err != nil {
			return nil, err
		}
		g, ok := groups[mapKey]
		if !ok {
			g = &groupState{
				id:     id,
				sums:   make(map[string]float64),
				mins:   make(map[string]any),
				maxs:   make(map[string]any),
				counts: make(map[string]int),
			}
			groups[mapKey] = g
			order = append(order, mapKey)
		}
		g.n++
		for _, acc := range st.Accumulate {
			switch acc.Op {
			case AccCount:
				continue
			case AccSum, AccAvg:
				if f, ok := toFloat(d[acc.Field]); ok {
					g.sums[acc.As] += f
					g.counts[acc.As]++
				}
			case AccMin:
				cur, seen := g.mins[acc.As]
				if v := d[acc.Field]; v != nil {
					if cmp, comparable := Compare(v, cur); !seen || (comparable && cmp < 0) {
						g.mins[acc.As] = v
					}
				}
			case AccMax:
				cur, seen := g.maxs[acc.As]
				if v := d[acc.Field]; v != nil {
					if cmp, comparable := Compare(v, cur); !seen || (comparable && cmp > 0) {
						g.maxs[acc.As] = v
					}
				}
			default:
				return nil, fmt.Errorf("unsupported accumulator %q", acc.Op)
			}
		}
	}

	out := make([]Document, 0, len(order))
	for _, key := range order {
		g := groups[key]
		doc := Document{"_id": g.id}
		for _, acc := range st.Accumulate {
			switch acc.Op {
			case AccCount:
				doc[acc.As] = g.n
			case AccSum:
				doc[acc.As] = g.sums[acc.As]
			case AccAvg:
				if g.counts[acc.As] > 0 {
					doc[acc.As] = g.sums[acc.As] / float64(g.counts[acc.As])
				} else {
					doc[acc.As] = float64(0)
				}
			case AccMin:
				doc[acc.As] = g.mins[acc.As]
			case AccMax:
				doc[acc.As] = g.maxs[acc.As]
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

func groupKeyOf(d Document, key GroupKey) (id any, mapKey string, err error) {
	if key.Field == "" {
		return nil, "", nil
	}
	val := d[key.Field]
	if key.Bucket == "" {
		if val == nil {
			return nil, "\x00nil", nil
		}
		return val, fmt.Sprintf("%v", val), nil
	}
	t, ok := toTime(val)
	if !ok {
		return nil, "", fmt.Errorf("field %q is not a time value", key.Field)
	}
	label := bucketLabel(t, key.Bucket)
	return label, label, nil
}

func bucketLabel(t time.Time, g Granularity) string {
	switch g {
	case Monthly:
		return t.Format("2006-01")
	case Weekly:
		// Week starts on the most recent Sunday.
		start := t.AddDate(0, 0, -int(t.Weekday()))
		return start.Format("2006-01-02")
	default:
		return t.Format("2006-01-02")
	}
}

func lookupDocs(docs []Document, st Lookup, resolve CollectionResolver) ([]Document, error) {
	if resolve == nil {
		return nil, fmt.Errorf("lookup stage requires a collection resolver")
	}
	foreign, err := resolve(st.From)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		local := d[st.LocalField]
		var joined Document
		if local != nil {
			for _, f := range foreign {
				if cmp, comparable := Compare(f[st.ForeignField], local); comparable && cmp == 0 {
					joined = f
					break
				}
			}
		}
		if joined != nil {
			d[st.As] = joined
		} else {
			d[st.As] = nil
		}
	}
	return docs, nil
}

func projectDocs(docs []Document, st Project) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		proj := make(Document, len(st.Fields))
		for _, f := range st.Fields {
			v := valueAtPath(d, f.Path)
			if v == nil {
				v = f.Default
			}
			proj[f.As] = v
		}
		out = append(out, proj)
	}
	return out
}

func valueAtPath(d Document, path string) any {
	parts := strings.Split(path, ".")
	var cur any = d
	for _, p := range parts {
		m, ok := cur.(Document)
		if !ok {
			return nil
		}
		cur = m[p]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// SortDocuments orders docs in place by field. Incomparable pairs keep their
// relative order (the sort is stable), so mixed-type fields degrade gracefully
// instead of panicking.
func SortDocuments(docs []Document, field string, order SortOrder) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp, comparable := Compare(docs[i][field], docs[j][field])
		if !comparable {
			return false
		}
		if order == Desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// SelectFields reduces doc to the given fields; with no fields the document
// is returned unchanged.
func SelectFields(doc Document, fields []string) Document {
	if len(fields) == 0 {
		return doc
	}
	out := make(Document, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
