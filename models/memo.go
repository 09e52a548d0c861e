package models

import (
	"strings"
	"time"
)

// MemoRecord is the persisted shape of a memo. ID is zero until the store
// assigns one.
type MemoRecord struct {
	ID        int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Category  string    `json:"category" yaml:"category"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
	Hashtags  []string  `json:"hashtags" yaml:"hashtags"`
}

// Memo is a memo together with its comments. Comments are joined in at read
// time and are never stored as part of the memo row.
type Memo struct {
	MemoRecord `yaml:",inline"`
	Comments   []MemoComment `json:"comments" yaml:"comments"`
}

type MemoComment struct {
	ID        int64     `json:"id,omitempty" yaml:"id,omitempty"`
	MemoID    int64     `json:"memoId" yaml:"memoId"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Persisted reports whether the store has assigned the memo an id.
func (m MemoRecord) Persisted() bool {
	return m.ID > 0
}

// Persisted reports whether the store has assigned the comment an id.
func (c MemoComment) Persisted() bool {
	return c.ID > 0
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (m Memo) Clone() Memo {
	out := m
	if m.Hashtags != nil {
		out.Hashtags = append([]string(nil), m.Hashtags...)
	}
	out.Comments = append(make([]MemoComment, 0, len(m.Comments)), m.Comments...)
	return out
}

type CreateMemoRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Category string   `json:"category" validate:"required,max=100,category"`
	Content  string   `json:"content" validate:"required"`
	Hashtags []string `json:"hashtags" validate:"omitempty,max=50,dive,hashtag"`
}

type UpdateMemoRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Category string   `json:"category" validate:"required,max=100,category"`
	Content  string   `json:"content" validate:"required"`
	Hashtags []string `json:"hashtags" validate:"omitempty,max=50,dive,hashtag"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ParseHashtags splits comma-separated input into trimmed tags, dropping
// empty entries and a leading '#'.
func ParseHashtags(s string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimPrefix(strings.TrimSpace(part), "#")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
