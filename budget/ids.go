package budget

import (
	"time"

	"github.com/google/uuid"
)

// IDSource issues line item ids. Ids follow the wall clock in milliseconds
// but are strictly increasing, so rapid creation never repeats one.
type IDSource struct {
	now  func() time.Time
	last int64
}

// NewIDSource returns an IDSource driven by now. A nil now uses time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns a fresh item id.
func (s *IDSource) Next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe makes sure later ids are greater than every id in doc.
func (s *IDSource) Observe(doc Document) {
	for _, c := range doc.Categories {
		for _, it := range c.Items {
			if it.ID > s.last {
				s.last = it.ID
			}
		}
	}
}

// NewCategoryID returns a custom category id not used in doc.
func NewCategoryID(doc *Document) string {
	for {
		id := "custom-" + uuid.NewString()
		if _, taken := doc.Category(id); !taken {
			return id
		}
	}
}

// NewAttachmentID returns a fresh attachment id.
func NewAttachmentID() string {
	return uuid.NewString()
}
