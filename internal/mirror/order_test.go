package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPOrderIsCacheable(t *testing.T) {
	assert.True(t, HTTPOrder{Cacheable: true}.IsCacheable())
	assert.False(t, HTTPOrder{Cacheable: false}.IsCacheable())
}

func TestHTTPOrderCustomProviderUnset(t *testing.T) {
	_, ok := HTTPOrder{}.CustomProvider()
	assert.False(t, ok)
}

func TestHTTPOrderCustomProviderSet(t *testing.T) {
	p := NewHTTPProvider("https://pinned.example/", 0)
	order := HTTPOrder{Custom: &p}

	got, ok := order.CustomProvider()
	assert.True(t, ok)
	assert.Equal(t, p, got)
}

func TestHTTPOrderReuseChannelResetsServedCounter(t *testing.T) {
	ch := &HTTPChannel{}
	ch.addServed(100)

	order := HTTPOrder{}
	reused, err := order.ReuseChannel(Properties{}, nil, false, ch)
	assert.NoError(t, err)

	served, _ := reused.ProgressIndicator()
	assert.Zero(t, served)
}
