package shopify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/stretchr/testify/assert"
)

func TestEnricherSwallowsSingleFailure(t *testing.T) {
	fs, srv := newFakeStore(t)

	products := make([]models.Product, 10)
	for i := range products {
		handle := fmt.Sprintf("h%d", i)
		products[i] = models.Product{Title: handle, Handle: handle, Collections: []string{}}
		if i != 3 {
			fs.details[handle] = []string{"Shirts"}
		}
	}

	progress := &progressRecorder{}
	(&Enricher{Client: newClient(t, srv)}).Enrich(context.Background(), products, progress.record)

	for i, p := range products {
		if i == 3 {
			assert.NotNil(t, p.Collections)
			assert.Empty(t, p.Collections)
			continue
		}
		assert.Equal(t, []string{"Shirts"}, p.Collections, p.Handle)
	}
	assert.Equal(t, 10, fs.requestCount("/products/"))
	assert.Equal(t, []progressCall{{0, 10}}, progress.calls)
}

func TestEnricherSkipsScopedProducts(t *testing.T) {
	fs, srv := newFakeStore(t)
	fs.details["b"] = []string{"Mugs"}

	products := []models.Product{
		{Handle: "a", Collections: []string{"Already"}},
		{Handle: "b"},
	}
	(&Enricher{Client: newClient(t, srv)}).Enrich(context.Background(), products, nil)

	assert.Equal(t, []string{"Already"}, products[0].Collections)
	assert.Equal(t, []string{"Mugs"}, products[1].Collections)
	assert.Equal(t, 1, fs.requestCount("/products/"))
}

func TestEnricherProgressEveryTenth(t *testing.T) {
	_, srv := newFakeStore(t)

	products := make([]models.Product, 25)
	progress := &progressRecorder{}
	(&Enricher{Client: newClient(t, srv)}).Enrich(context.Background(), products, progress.record)

	assert.Equal(t, []progressCall{{0, 25}, {10, 25}, {20, 25}}, progress.calls)
	for _, p := range products {
		assert.Equal(t, []string{}, p.Collections)
	}
}

func TestEnricherPausesEveryTwentieth(t *testing.T) {
	fs, srv := newFakeStore(t)
	sleeps := recordSleeps(t, fs, "/products/")

	products := make([]models.Product, 41)
	for i := range products {
		products[i].Handle = fmt.Sprintf("h%d", i)
	}
	NewEnricher(newClient(t, srv)).Enrich(context.Background(), products, nil)

	assert.Equal(t, 41, fs.requestCount("/products/"))
	assert.Equal(t, []time.Duration{PageDelay, PageDelay, PageDelay}, sleeps.delays)
	assert.Equal(t, []int{1, 21, 41}, sleeps.requests, "pauses after items 0, 20 and 40")
}
