package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTopic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"love", "love"},
		{"  Love ", "love"},
		{"Inspirational  Life", "inspirational-life"},
		{"new\tyear\nresolutions", "new-year-resolutions"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTopic(tt.in))
		})
	}
}

func TestNormalizeTopicIsIdempotent(t *testing.T) {
	for _, in := range []string{"Good  Morning", "art", " A b C "} {
		once := NormalizeTopic(in)
		assert.Equal(t, once, NormalizeTopic(once))
	}
}

func TestTopicURL(t *testing.T) {
	assert.Equal(t, "https://www.brainyquote.com/topics/love-quotes", TopicURL("https://www.brainyquote.com", "love"))
	assert.Equal(t, "https://quotes.test/topics/good-morning-quotes", TopicURL("https://quotes.test/", "good-morning"))
}
