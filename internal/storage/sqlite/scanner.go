package sqlite

// Scanner defines the common scanning behavior of sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows defines the common behavior of sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanTaskRow(scanner Scanner) (*taskRow, error) {
	row := &taskRow{}
	err := scanner.Scan(
		&row.Position,
		&row.ID,
		&row.Status,
		&row.Priority,
		&row.Name,
		&row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func scanTaskRows(rows Rows) ([]*taskRow, error) {
	var result []*taskRow
	for rows.Next() {
		row, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
