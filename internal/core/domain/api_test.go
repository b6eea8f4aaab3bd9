package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIHandle_Name(t *testing.T) {
	assert.Equal(t, "Orders", APIHandle{ID: "orders-api", DisplayName: "Orders"}.Name())
	assert.Equal(t, "orders-api", APIHandle{ID: "orders-api"}.Name())
}

func TestAPIFilter_EmptyMatchesAll(t *testing.T) {
	filter := APIFilter{}
	assert.True(t, filter.IsEmpty())
	assert.True(t, filter.Matches(APIHandle{ID: "anything"}))
}

func TestAPIFilter_MatchesByName(t *testing.T) {
	filter := APIFilter{IncludeAPIs: []string{"orders"}}

	assert.True(t, filter.Matches(APIHandle{ID: "orders"}))
	assert.True(t, filter.Matches(APIHandle{ID: "x", DisplayName: "Orders"}), "name match is case-insensitive")
	assert.False(t, filter.Matches(APIHandle{ID: "payments"}))
}

func TestAPIFilter_MatchesByTag(t *testing.T) {
	filter := APIFilter{IncludeTags: []string{"public"}}

	assert.True(t, filter.Matches(APIHandle{ID: "a", Tags: []string{"internal", "Public"}}))
	assert.False(t, filter.Matches(APIHandle{ID: "b", Tags: []string{"internal"}}))
	assert.False(t, filter.Matches(APIHandle{ID: "c"}))
}

func TestAPIFilter_EitherListAdmits(t *testing.T) {
	filter := APIFilter{IncludeAPIs: []string{"orders"}, IncludeTags: []string{"public"}}

	assert.True(t, filter.Matches(APIHandle{ID: "orders"}))
	assert.True(t, filter.Matches(APIHandle{ID: "other", Tags: []string{"public"}}))
	assert.False(t, filter.Matches(APIHandle{ID: "other", Tags: []string{"private"}}))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Orders_API__v2_", SanitizeFileName("Orders API (v2)"))
	assert.Equal(t, "plain-name_ok", SanitizeFileName("plain-name_ok"))
	assert.Equal(t, "", SanitizeFileName(""))
}

func TestSpecFileName(t *testing.T) {
	api := APIHandle{ID: "orders-v1", DisplayName: "Orders API"}
	assert.Equal(t, "Orders_API_orders-v1.json", SpecFileName(api))
}
