package object

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyIgnoresOriginalName(t *testing.T) {
	key := NewKey("cvs/", "Jane Doe CV.PDF")
	assert.True(t, strings.HasPrefix(key, "cvs/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "Jane")
}

func TestNewKeyDropsSuspiciousExtension(t *testing.T) {
	key := NewKey("", "weird.name with space")
	assert.NotContains(t, key, " ")
	assert.Len(t, key, 36)
}

func TestNewKeyUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := NewKey("cvs", "resume.pdf")
			mu.Lock()
			seen[k] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}
