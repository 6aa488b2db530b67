package browser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"

	"github.com/hcastellani/roost-cli/api/schemas"
)

func TestCombineContext_SecondaryCancelPropagates(t *testing.T) {
	parent := context.Background()
	secondary, cancelSecondary := context.WithCancel(context.Background())

	combined, cancel := CombineContext(parent, secondary)
	defer cancel()

	cancelSecondary()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context was not canceled when the secondary context was")
	}
}

func TestCombineContext_ParentCancelPropagates(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	secondary := context.Background()

	combined, cancel := CombineContext(parent, secondary)
	defer cancel()

	cancelParent()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context was not canceled when the parent context was")
	}
}

func TestCombineContext_ExplicitCancelReleasesWatcher(t *testing.T) {
	combined, cancel := CombineContext(context.Background(), context.Background())

	cancel()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context did not observe its own cancel")
	}
}

func TestSameSiteConversionRoundTrip(t *testing.T) {
	for _, s := range []schemas.SameSite{schemas.SameSiteStrict, schemas.SameSiteLax, schemas.SameSiteNone} {
		assert.Equal(t, s, fromCDPSameSite(toCDPSameSite(s)))
	}

	// Unset attributes stay unset in both directions.
	assert.Equal(t, schemas.SameSite(""), fromCDPSameSite(network.CookieSameSite("")))
	assert.Equal(t, network.CookieSameSite(""), toCDPSameSite(schemas.SameSite("")))
}
