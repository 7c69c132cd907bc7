package compat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditTrailOrdering(t *testing.T) {
	audit := NewAuditTrail()
	audit.AddDecision("detect_version", "v2")
	audit.AddDecisionDetail("status_mapping", "FULFILLED->SHIPPED", map[string]string{"context": "physical"})
	audit.AddDecision("price_consistency", "valid")

	require.Len(t, audit.Decisions, 3)
	assert.Equal(t, "detect_version", audit.Decisions[0].Step)
	assert.Equal(t, "status_mapping", audit.Decisions[1].Step)
	assert.Equal(t, "physical", audit.Decisions[1].Detail["context"])
	assert.Equal(t, "price_consistency", audit.Decisions[2].Step)
}

func TestAuditTrailWarnings(t *testing.T) {
	audit := NewAuditTrail()
	assert.False(t, audit.HasWarnings())

	audit.AddWarning("Unknown currency '%s', assuming 1:1 USD fallback", "XCD")
	require.True(t, audit.HasWarnings())
	assert.Equal(t, "Unknown currency 'XCD', assuming 1:1 USD fallback", audit.Warnings[0])
}

func TestAuditTrailFindDecision(t *testing.T) {
	audit := NewAuditTrail()
	audit.AddDecision("price_consistency", "use_computed")
	audit.AddDecision("price_consistency", "valid")

	d, ok := audit.FindDecision("price_consistency")
	require.True(t, ok)
	assert.Equal(t, "use_computed", d.Action, "first matching decision wins")

	_, ok = audit.FindDecision("missing_step")
	assert.False(t, ok)
}

func TestAuditTrailToJSON(t *testing.T) {
	audit := NewAuditTrail()
	audit.AddDecision("detect_version", "v3")
	audit.AddWarning("Missing created timestamp")

	raw, err := audit.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded["decisions"], 1)
	assert.Len(t, decoded["warnings"], 1)
}
