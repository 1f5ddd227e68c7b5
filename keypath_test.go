package morph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeypath(t *testing.T) {
	assert.Equal(t, "name", keypath("", "name"))
	assert.Equal(t, "profile.age", keypath("profile", "age"))
	assert.Equal(t, "tags.1", keypath("tags", 1))
	assert.Equal(t, "orders.0.items.2", keypath(keypath(keypath("orders", 0), "items"), 2))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Customer Id", humanize("customer_id"))
	assert.Equal(t, "Name", humanize("name"))
	assert.Equal(t, "Shipping Address", humanize("shipping_address"))
}
