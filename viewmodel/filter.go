package viewmodel

import (
	"fmt"
	"memo-app/models"

	"github.com/gobwas/glob"
)

// HashtagFilter matches memos carrying at least one hashtag that matches a
// glob pattern such as "work*" or "{home,garden}".
type HashtagFilter struct {
	pattern glob.Glob
}

func NewHashtagFilter(pattern string) (*HashtagFilter, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid hashtag pattern %q: %w", pattern, err)
	}
	return &HashtagFilter{pattern: g}, nil
}

func (f *HashtagFilter) Match(m models.Memo) bool {
	for _, tag := range m.Hashtags {
		if f.pattern.Match(tag) {
			return true
		}
	}
	return false
}

// Apply returns the memos that match, keeping their order.
func (f *HashtagFilter) Apply(memos []models.Memo) []models.Memo {
	kept := make([]models.Memo, 0, len(memos))
	for _, m := range memos {
		if f.Match(m) {
			kept = append(kept, m)
		}
	}
	return kept
}
