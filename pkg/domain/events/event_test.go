package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewAssignsIdentityAndTimestamp(t *testing.T) {
	e := New(EventTypeTransactionCompleted, "bank", "transaction settled")

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.OccurredAt.IsZero())
	assert.Equal(t, EventTypeTransactionCompleted, e.Type)
	assert.Equal(t, "bank", e.Source)
}

func TestWithPayloadCopiesMap(t *testing.T) {
	payload := map[string]string{"user": "alice"}
	e := New(EventTypeLoginFailed, "auth", "bad password", WithPayload(payload))

	payload["user"] = "mallory"
	assert.Equal(t, "alice", e.Field("user"))
}

func TestWithField(t *testing.T) {
	e := New(
		EventTypeTransactionCreated, "bank", "created",
		WithField("tx_id", "abc"),
		WithField("amount", "3000"),
	)
	assert.Equal(t, "abc", e.Field("tx_id"))
	assert.Equal(t, "3000", e.Field("amount"))
	assert.Equal(t, "", e.Field("missing"))
}

func TestTypeFamilies(t *testing.T) {
	assert.True(t, EventTypeLoginFailed.IsSecurity())
	assert.True(t, EventTypeFraudSuspected.IsSecurity())
	assert.False(t, EventTypeTransactionCreated.IsSecurity())

	assert.True(t, EventTypeTransactionFailed.IsTransaction())
	assert.False(t, EventTypeBalanceLow.IsTransaction())
}

func TestKindsIsClosedSet(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 7)
	seen := map[EventType]bool{}
	for _, k := range kinds {
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
}
