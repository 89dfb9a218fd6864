package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithStatementTimeout(t *testing.T) {
	tests := []struct {
		name     string
		dsn      string
		expected string
	}{
		{
			name:     "appends to existing query string",
			dsn:      "postgres://u:p@localhost:5432/erp?sslmode=disable",
			expected: "postgres://u:p@localhost:5432/erp?sslmode=disable&statement_timeout=30000",
		},
		{
			name:     "starts the query string when absent",
			dsn:      "postgres://u:p@localhost:5432/erp",
			expected: "postgres://u:p@localhost:5432/erp?statement_timeout=30000",
		},
		{
			name:     "respects a caller-provided timeout",
			dsn:      "postgres://u:p@localhost:5432/erp?statement_timeout=5000",
			expected: "postgres://u:p@localhost:5432/erp?statement_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, withStatementTimeout(tt.dsn))
		})
	}
}
