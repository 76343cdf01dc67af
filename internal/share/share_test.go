package share

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashtags(t *testing.T) {
	tags := Hashtags("Sarah", "Michael", 2024)
	assert.Equal(t, []string{"#SarahMichaelWedding", "#SarahAndMichael", "#SarahMichael2024"}, tags)
	assert.Equal(t, "#SarahMichaelWedding #SarahAndMichael #SarahMichael2024", HashtagText(tags))
}

func TestLinks(t *testing.T) {
	links := Links("https://example.com/wedding?x=1", "Sarah", "Michael")
	require.Len(t, links, len(Platforms))

	assert.Equal(t,
		"https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fexample.com%2Fwedding%3Fx%3D1",
		links[Facebook])
	assert.Equal(t,
		"https://twitter.com/intent/tweet?url=https%3A%2F%2Fexample.com%2Fwedding%3Fx%3D1&text=Join%20us%20at%20Sarah%20%26%20Michael's%20Wedding!",
		links[Twitter])
	assert.Equal(t,
		"https://api.whatsapp.com/send?text=Join%20us%20at%20Sarah%20%26%20Michael's%20Wedding!%20https%3A%2F%2Fexample.com%2Fwedding%3Fx%3D1",
		links[WhatsApp])

	t.Run("round trips through a URL parser", func(t *testing.T) {
		u, err := url.Parse(links[Twitter])
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/wedding?x=1", u.Query().Get("url"))
		assert.Equal(t, "Join us at Sarah & Michael's Wedding!", u.Query().Get("text"))
	})
}
