package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentID_StableForSameContent(t *testing.T) {
	a := ContentID([]byte("# Orders\n\ncontent"))
	b := ContentID([]byte("# Orders\n\ncontent"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestContentID_ChangesWithContent(t *testing.T) {
	a := ContentID([]byte("# Orders\n\ncontent"))
	b := ContentID([]byte("# Orders\n\ncontenT"))
	assert.NotEqual(t, a, b)
}

func TestWikiDocumentID(t *testing.T) {
	id := WikiDocumentID("orders")
	assert.Equal(t, "wiki-"+ContentID([]byte("orders")), id)
	assert.Equal(t, id, WikiDocumentID("orders"), "keyed by service name for stable re-runs")
	assert.NotEqual(t, id, WikiDocumentID("payments"))
}
