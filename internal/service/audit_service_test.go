package service_test

import (
	"context"
	"testing"

	"clinic-billing-core/internal/service"
	"clinic-billing-core/internal/testutil/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_WritesMetadata(t *testing.T) {
	store := memstore.New()
	svc := service.NewAuditService(quietLogger(), store.AuditLogRepo())
	actor := uuid.New()

	err := svc.LogUpdate(context.Background(), nil, &actor, "bill.add_item", "bill", "b-1",
		map[string]interface{}{"total_amount": "500.00"},
		map[string]interface{}{"total_amount": "1250.00"})
	require.NoError(t, err)

	logs := store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "bill.add_item", logs[0].Action)
	assert.Equal(t, actor, *logs[0].UserID)
	assert.Equal(t, "bill", logs[0].Metadata["entity"])
	assert.Equal(t, "b-1", logs[0].Metadata["entity_id"])
	assert.NotNil(t, logs[0].Metadata["old_value"])
	assert.NotNil(t, logs[0].Metadata["new_value"])
}

func TestAuditService_SystemActionHasNoUser(t *testing.T) {
	store := memstore.New()
	svc := service.NewAuditService(quietLogger(), store.AuditLogRepo())

	require.NoError(t, svc.LogCreate(context.Background(), nil, nil, "bill.create", "bill", "b-2", nil))

	logs := store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
	assert.Nil(t, logs[0].Metadata["old_value"])
}
