package catalog

import (
	"fmt"
	"strings"
)

// Branch queries feeding the resolver. Each one stays fully parameterized and
// ends in its WHERE clause so a permission fragment can be appended with
// " AND ".
const (
	customPageGrantsSQL = `
SELECT custom_roles.page AS name, custom_roles.modified, pages.title, custom_roles.ref_doctype
FROM custom_roles, has_roles, pages
WHERE has_roles.parent = custom_roles.name
  AND pages.name = custom_roles.page
  AND custom_roles.page IS NOT NULL
  AND has_roles.role = ANY($1)`

	customReportGrantsSQL = `
SELECT custom_roles.report AS name, custom_roles.modified, reports.name AS title, reports.ref_doctype
FROM custom_roles, has_roles, reports
WHERE has_roles.parent = custom_roles.name
  AND reports.name = custom_roles.report
  AND custom_roles.report IS NOT NULL
  AND has_roles.role = ANY($1)`

	standardPageGrantsSQL = `
SELECT DISTINCT pages.name, pages.modified, pages.title, NULL::text AS ref_doctype
FROM has_roles, pages
WHERE has_roles.role = ANY($1)
  AND has_roles.parent = pages.name
  AND pages.name NOT IN (SELECT page FROM custom_roles WHERE page IS NOT NULL)`

	standardReportGrantsSQL = `
SELECT DISTINCT reports.name, reports.modified, reports.name AS title, reports.ref_doctype
FROM has_roles, reports
WHERE has_roles.role = ANY($1)
  AND has_roles.parent = reports.name
  AND reports.name NOT IN (SELECT report FROM custom_roles WHERE report IS NOT NULL)
  AND reports.disabled = FALSE`

	zeroRolePagesSQL = `
SELECT pages.name, pages.modified, pages.title, NULL::text AS ref_doctype
FROM pages
WHERE (SELECT count(*) FROM has_roles WHERE has_roles.parent = pages.name) = 0`
)

// branchQuery carries one listing query plus its arguments. withConditions is
// the single place raw SQL concatenation is permitted; every other query in
// the package goes through pgx parameters.
type branchQuery struct {
	sql  string
	args []any
}

// withConditions appends the permission fragment to the query's WHERE clause.
// A query whose last top-level clause is not WHERE cannot take a fragment.
func (q branchQuery) withConditions(fragment string) (branchQuery, error) {
	if fragment == "" {
		return q, nil
	}
	if !q.endsInWhere() {
		return branchQuery{}, fmt.Errorf("catalog: query does not end in a WHERE clause: %q", q.sql)
	}
	return branchQuery{sql: q.sql + " AND " + fragment, args: q.args}, nil
}

// endsInWhere reports whether the last top-level clause keyword of the query
// is WHERE. Clauses inside parenthesised subqueries do not count.
func (q branchQuery) endsInWhere() bool {
	depth := 0
	last := ""
	word := make([]byte, 0, 8)
	flush := func() {
		if depth == 0 && len(word) > 0 {
			switch w := strings.ToUpper(string(word)); w {
			case "WHERE", "GROUP", "ORDER", "HAVING", "LIMIT", "OFFSET", "UNION", "FETCH":
				last = w
			}
		}
		word = word[:0]
	}
	for i := 0; i < len(q.sql); i++ {
		c := q.sql[i]
		switch {
		case c == '(':
			flush()
			depth++
		case c == ')':
			flush()
			depth--
		case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9'):
			word = append(word, c)
		default:
			flush()
		}
	}
	flush()
	return last == "WHERE"
}
