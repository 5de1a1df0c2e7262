package ledgerrepo

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAdjustmentsQuery_OrdersByCommitSequence(t *testing.T) {
	assert.Contains(t, listAdjustmentsQuery, "ORDER BY seq DESC")
	assert.NotContains(t, listAdjustmentsQuery, "created_at DESC")

	migration, err := os.ReadFile("../../../sql/00004_stock_adjustments_seq.sql")
	require.NoError(t, err)
	up := strings.SplitN(string(migration), "-- +goose Down", 2)[0]
	assert.Contains(t, up, "ADD COLUMN IF NOT EXISTS seq BIGSERIAL")
}
