package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/pkg/token"
)

func TestSummarize_Star(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		star bool
	}{
		{name: "bare star", sql: "SELECT * FROM raw.orders", star: true},
		{name: "qualified star", sql: "SELECT o.* FROM orders o", star: true},
		{name: "star in second branch", sql: "SELECT a FROM x UNION ALL SELECT * FROM y", star: true},
		{name: "star in CTE only", sql: "WITH c AS (SELECT * FROM t) SELECT a FROM c"},
		{name: "count star", sql: "SELECT count(*) FROM t"},
		{name: "star after call", sql: "SELECT count(*) AS n, * FROM t", star: true},
		{name: "star after nested calls", sql: "SELECT coalesce(upper(a), 'x') b, t.* FROM t", star: true},
		{name: "star in subquery", sql: "SELECT s.a FROM (SELECT * FROM base) s"},
		{name: "multiplication", sql: "SELECT a * 2 AS b FROM t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.star, Summarize(tt.sql).IsStar())
		})
	}
}

func TestSummarize_StarPos(t *testing.T) {
	s := Summarize("SELECT\n  id,\n  *\nFROM t")
	assert.Equal(t, token.Position{Line: 3, Column: 3, Offset: 15}, s.StarPos())
}

func TestSummarize_ProjectionsAfterCall(t *testing.T) {
	s := Summarize("SELECT count(*) AS n, * FROM raw.a")

	require.Len(t, s.Projections, 2)
	assert.Equal(t, "n", s.Projections[0].Alias)
	assert.True(t, s.Projections[1].Star)
	assert.Equal(t, token.Position{Line: 1, Column: 23, Offset: 22}, s.StarPos())

	// the closing paren of a subquery still ends its SELECT list
	s = Summarize("SELECT x FROM (SELECT max(a) AS m, b FROM t) s")
	require.Len(t, s.Projections, 1)
	assert.Equal(t, "x", s.Projections[0].Column)
}

func TestSummarize_Sources(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{name: "single", sql: "SELECT a FROM raw.orders", want: []string{"raw.orders"}},
		{name: "joins", sql: "SELECT o.id FROM orders o JOIN customers AS c ON o.cid = c.id LEFT JOIN Payments p USING (id)", want: []string{"orders", "customers", "payments"}},
		{name: "comma list", sql: "SELECT a FROM t1, t2 AS x, schema.t3", want: []string{"t1", "t2", "schema.t3"}},
		{name: "cte excluded", sql: "WITH recent AS (SELECT * FROM orders) SELECT id FROM recent", want: []string{"orders"}},
		{name: "cte with columns", sql: "WITH r (a, b) AS MATERIALIZED (SELECT 1, 2 FROM base) SELECT a FROM r", want: []string{"base"}},
		{name: "subquery", sql: "SELECT s.a FROM (SELECT a FROM base) s", want: []string{"base"}},
		{name: "extract", sql: "SELECT EXTRACT(YEAR FROM ts) AS y FROM events", want: []string{"events"}},
		{name: "table function", sql: "SELECT * FROM read_csv('f.csv')", want: nil},
		{name: "quoted", sql: `SELECT a FROM "Raw"."Events"`, want: []string{"raw.events"}},
		{name: "dedupe", sql: "SELECT a FROM t UNION SELECT a FROM t", want: []string{"t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.sql).Sources)
		})
	}
}

func TestSummarize_Projections(t *testing.T) {
	s := Summarize("SELECT DISTINCT id, amount AS total, c.name nm, s.a, upper(x) AS ux, 1 FROM t")

	require.Len(t, s.Projections, 6)
	got := make([][3]string, 0, len(s.Projections))
	for _, p := range s.Projections {
		got = append(got, [3]string{p.Qualifier, p.Column, p.Alias})
	}
	assert.Equal(t, [][3]string{
		{"", "id", ""},
		{"", "amount", "total"},
		{"c", "name", "nm"},
		{"s", "a", ""},
		{"", "", "ux"},
		{"", "", ""},
	}, got)
	assert.Equal(t, "upper ( x ) AS ux", s.Projections[4].Text)
}

func TestSummarize_Validity(t *testing.T) {
	s := Summarize("SELECT (a FROM t")
	assert.True(t, s.HasSelect)
	assert.False(t, s.Balanced)

	s = Summarize("SELECT a) FROM t")
	assert.False(t, s.Balanced)

	s = Summarize("CREATE TABLE x (a int)")
	assert.False(t, s.HasSelect)
	assert.True(t, s.Balanced)

	s = Summarize("WITH c AS (SELECT 1 AS a) SELECT a FROM c")
	assert.Equal(t, []string{"c"}, s.CTEs)
}
