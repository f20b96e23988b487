package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderValue(t *testing.T) {
	assert.Equal(t, "32500.2", OrderValue("65000.5", "0.5"))
	assert.Equal(t, "0.0", OrderValue("65000.5", "0"))
	assert.Equal(t, "", OrderValue("", "0.5"))
	assert.Equal(t, "", OrderValue("65000.5", "lots"))
}

func TestQuantityForValue(t *testing.T) {
	assert.Equal(t, "0.5000", QuantityForValue("32500", "65000"))
	assert.Equal(t, "", QuantityForValue("32500", "0"))
	assert.Equal(t, "", QuantityForValue("x", "65000"))
}
