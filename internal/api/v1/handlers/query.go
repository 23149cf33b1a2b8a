package handlers

import (
	"fmt"
	"strconv"
	"strings"
)

// taskQuery adalah hasil terjemahan query param list task
// (completed, sortBy, limit, skip) menjadi potongan SQL.
type taskQuery struct {
	Completed *bool
	SortField string
	SortAsc   bool
	Limit     int // 0 berarti tanpa limit
	Skip      int // 0 berarti tanpa offset
}

// Kolom yang boleh dipakai di ORDER BY. Nama field dari client tidak
// pernah masuk mentah ke SQL.
var sortableTaskColumns = map[string]bool{
	"description": true,
	"completed":   true,
	"created_at":  true,
	"updated_at":  true,
}

func parseTaskQuery(completed, sortBy, limitStr, skipStr string) taskQuery {
	var q taskQuery

	// completed: kosong berarti tanpa filter, "true" berarti hanya yang
	// selesai, string lain apa pun berarti yang belum selesai
	if completed != "" {
		value := completed == "true"
		q.Completed = &value
	}

	// sortBy: format field:direction, ascending hanya kalau direction
	// persis "asc". Field yang tidak dikenal diabaikan (urutan natural).
	if sortBy != "" {
		parts := strings.Split(sortBy, ":")
		if sortableTaskColumns[parts[0]] {
			q.SortField = parts[0]
			q.SortAsc = len(parts) > 1 && parts[1] == "asc"
		}
	}

	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		q.Limit = limit
	}
	if skip, err := strconv.Atoi(skipStr); err == nil && skip > 0 {
		q.Skip = skip
	}

	return q
}

// apply menempelkan filter, order, limit, dan offset ke query dasar.
// Query dasar sudah mengandung WHERE owner_id = $1.
func (q taskQuery) apply(base string, args []interface{}) (string, []interface{}) {
	if q.Completed != nil {
		args = append(args, *q.Completed)
		base += fmt.Sprintf(" AND completed = $%d", len(args))
	}
	if q.SortField != "" {
		direction := "DESC"
		if q.SortAsc {
			direction = "ASC"
		}
		base += fmt.Sprintf(" ORDER BY %s %s", q.SortField, direction)
	} else {
		base += " ORDER BY id ASC"
	}
	if q.Limit > 0 {
		base += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Skip > 0 {
		base += fmt.Sprintf(" OFFSET %d", q.Skip)
	}
	return base, args
}
