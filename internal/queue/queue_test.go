package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueDeduplicatesSlugs(t *testing.T) {
	q := New("Love", "good morning", " love ", "", "Good  Morning", "wisdom")

	assert.Equal(t, 3, q.Len())
	assert.False(t, q.Add("LOVE"))
	assert.True(t, q.Add("life"))

	var got []string
	for {
		slug, ok := q.Next()
		if !ok {
			break
		}
		got = append(got, slug)
	}

	assert.Equal(t, []string{"love", "good-morning", "wisdom", "life"}, got)
	assert.Equal(t, 4, q.Taken())
	assert.Zero(t, q.Len())
	assert.False(t, q.Add("wisdom"))
}

func TestQueueEmpty(t *testing.T) {
	q := New()
	_, ok := q.Next()
	assert.False(t, ok)
	assert.False(t, q.Add("   "))
}
