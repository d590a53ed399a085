package utils

import "strings"

// JoinWithAnd joins a slice of SQL clauses with the AND operator.
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// JoinWithOr joins a slice of SQL clauses with the OR operator.
func JoinWithOr(clauses []string) string {
	return strings.Join(clauses, " OR ")
}

// Offset converts 1-based page/limit into a SQL offset.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
