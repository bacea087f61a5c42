package extractor

import (
	"strings"

	"javamap/internal/facts"
)

// placeholderMark replaces MyBatis #{...} and ${...} parameter placeholders
// before tokenizing. It is part of the identifier charset so a dynamic
// fragment stays fused to its neighbors, and any candidate containing it is
// rejected as unresolvable.
const placeholderMark = '\x7f'

// sqlKeywords are tokens that can never be a table name. They also terminate
// a FROM list.
var sqlKeywords = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "MERGE": {},
	"FROM": {}, "INTO": {}, "JOIN": {}, "INNER": {}, "LEFT": {}, "RIGHT": {},
	"FULL": {}, "OUTER": {}, "CROSS": {}, "ON": {}, "AS": {}, "WHERE": {},
	"SET": {}, "VALUES": {}, "GROUP": {}, "ORDER": {}, "BY": {}, "HAVING": {},
	"LIMIT": {}, "OFFSET": {}, "UNION": {}, "ALL": {}, "DISTINCT": {},
	"AND": {}, "OR": {}, "NOT": {}, "NULL": {}, "IN": {}, "EXISTS": {},
	"CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {}, "END": {}, "USING": {},
	"FOR": {},
}

type tableRef struct {
	schema string
	table  string
}

// tableRefFacts scans a statement's SQL text for referenced tables. One fact
// per distinct (schema, table); unresolvable references are skipped.
func tableRefFacts(stmt facts.SqlStatementFact) []facts.Fact {
	op, ok := facts.OpForSql(stmt.Kind)
	if !ok {
		return nil
	}

	var out []facts.Fact
	seen := map[string]struct{}{}
	for _, ref := range scanTableRefs(stmt.SQL) {
		key := ref.schema + "|" + ref.table
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, facts.TableRefFact{
			Project:     stmt.Project,
			Namespace:   stmt.Namespace,
			StatementID: stmt.ID,
			Table:       ref.table,
			Schema:      ref.schema,
			Op:          op,
		})
	}
	return out
}

// scanTableRefs is a best-effort scan for table names introduced by FROM,
// JOIN, and INTO clauses, plus the UPDATE statement target. Subqueries
// contribute through their own FROM clauses; dynamic table names are
// skipped, which only thins the result.
func scanTableRefs(sql string) []tableRef {
	tokens := sqlTokens(sql)

	var refs []tableRef
	for i := 0; i < len(tokens); i++ {
		switch strings.ToUpper(tokens[i]) {
		case "FROM":
			refs = append(refs, scanFromList(tokens, i+1)...)
		case "JOIN", "INTO":
			if i+1 < len(tokens) {
				if ref, ok := parseTableName(tokens[i+1]); ok {
					refs = append(refs, ref)
				}
			}
		case "UPDATE":
			// Only the statement-opening UPDATE names a table; later
			// occurrences (ON DUPLICATE KEY UPDATE) do not.
			if i == 0 && len(tokens) > 1 {
				if ref, ok := parseTableName(tokens[1]); ok {
					refs = append(refs, ref)
				}
			}
		}
	}
	return refs
}

// scanFromList reads a comma-separated table list: names, optional aliases,
// until a keyword ends the clause.
func scanFromList(tokens []string, start int) []tableRef {
	var refs []tableRef
	expectTable := true
	for i := start; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "," {
			expectTable = true
			continue
		}
		if tok == "(" {
			// Subquery or expression; its tables surface via the inner FROM
			expectTable = false
			continue
		}
		if tok == ")" {
			continue
		}
		if _, isKeyword := sqlKeywords[strings.ToUpper(tok)]; isKeyword {
			break
		}
		if expectTable {
			if ref, ok := parseTableName(tok); ok {
				refs = append(refs, ref)
			}
			expectTable = false
		}
		// Anything else in non-table position is an alias; ignore it
	}
	return refs
}

// parseTableName validates a candidate token and splits an optional schema
// qualifier. Reports false for keywords, placeholders, and malformed names.
func parseTableName(token string) (tableRef, bool) {
	if token == "" {
		return tableRef{}, false
	}
	if _, isKeyword := sqlKeywords[strings.ToUpper(token)]; isKeyword {
		return tableRef{}, false
	}
	if strings.ContainsRune(token, placeholderMark) {
		return tableRef{}, false
	}

	parts := strings.Split(token, ".")
	for _, part := range parts {
		if !validIdentifier(part) {
			return tableRef{}, false
		}
	}

	switch len(parts) {
	case 1:
		return tableRef{table: parts[0]}, true
	default:
		// catalog qualifiers beyond schema.table are dropped
		return tableRef{
			schema: parts[len(parts)-2],
			table:  parts[len(parts)-1],
		}, true
	}
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '$':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// sqlTokens splits SQL text into identifier-ish words and single-character
// punctuation tokens. Quoted identifiers lose their quoting; parameter
// placeholders collapse to placeholderMark.
func sqlTokens(sql string) []string {
	sql = stripPlaceholders(sql)

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case isIdentRune(r):
			current.WriteRune(r)
		case r == '\'':
			// String literal: skip to the closing quote so its content
			// cannot masquerade as identifiers
			flush()
			for i++; i < len(runes) && runes[i] != '\''; i++ {
			}
		case r == '"' || r == '`' || r == '[' || r == ']':
			// Quoted identifier delimiters join their contents to the word
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

func isIdentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_', r == '$', r == '.', r == placeholderMark:
		return true
	}
	return false
}

// stripPlaceholders replaces #{...} and ${...} parameter placeholders with
// placeholderMark so partially dynamic names stay detectable.
func stripPlaceholders(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if (c == '#' || c == '$') && i+1 < len(sql) && sql[i+1] == '{' {
			end := strings.IndexByte(sql[i:], '}')
			if end < 0 {
				b.WriteRune(placeholderMark)
				break
			}
			b.WriteRune(placeholderMark)
			i += end
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
