//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predmarket/platform/internal/database/dbtest"
)

func TestRepository_InsertAndList(t *testing.T) {
	repo := NewRepository(dbtest.NewPool(t))
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	entries := []*AuditLog{
		{OwnerUserID: owner, EventType: EventWagerRecorded, Severity: SeverityInfo, ResourceType: ResourceDepositLimits, CreatedAt: base},
		{OwnerUserID: owner, EventType: EventLimitExceeded, Severity: SeverityWarn, ResourceType: ResourceDepositLimits,
			Details: json.RawMessage(`{"windows":["daily"]}`), CreatedAt: base.Add(time.Minute)},
		{OwnerUserID: owner, EventType: EventWagerRecorded, Severity: SeverityInfo, ResourceType: ResourceDepositLimits, CreatedAt: base.Add(2 * time.Minute)},
		{OwnerUserID: other, EventType: EventWagerRecorded, Severity: SeverityInfo, CreatedAt: base},
	}
	for _, e := range entries {
		require.NoError(t, repo.Insert(ctx, e))
		assert.NotEqual(t, uuid.Nil, e.ID)
	}

	logs, total, err := repo.ListByOwner(ctx, owner, DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	params := DefaultListParams()
	params.Severity = SeverityWarn
	logs, total, err = repo.ListByOwner(ctx, owner, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, EventLimitExceeded, logs[0].EventType)
	assert.JSONEq(t, `{"windows":["daily"]}`, string(logs[0].Details))

	params = DefaultListParams()
	params.PageSize = 2
	params.Page = 2
	logs, total, err = repo.ListByOwner(ctx, owner, params)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, logs, 1)
}
