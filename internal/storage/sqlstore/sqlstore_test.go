package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration-api/internal/types"
)

func TestDateValueScan(t *testing.T) {
	want := "01-09-2024"

	sources := []any{
		time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.September, 1, 18, 30, 0, 0, time.UTC),
		[]byte("2024-09-01"),
		"2024-09-01 10:11:12",
		"2024-09-01T10:11:12.123Z",
	}

	for _, src := range sources {
		var d dateValue
		require.NoError(t, d.Scan(src), "%v", src)
		assert.Equal(t, want, types.FormatDisplayDate(d.Time), "%v", src)
	}
}

func TestDateValueScanRejects(t *testing.T) {
	for _, src := range []any{nil, int64(20240901), "tomorrow"} {
		var d dateValue
		assert.Error(t, d.Scan(src), "%v", src)
	}
}
