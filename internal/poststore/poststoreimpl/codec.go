package poststoreimpl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orgball2608/scheduled-post-manager/internal/domain"
)

// record is the persisted shape of a post. Timestamps are ISO-8601 strings.
type record struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	ScheduledTime string `json:"scheduledTime"`
	CreatedAt     string `json:"createdAt"`
	IsPublished   bool   `json:"isPublished"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodePosts(posts []domain.Post) ([]byte, error) {
	records := make([]record, 0, len(posts))
	for _, p := range posts {
		records = append(records, record{
			ID:            p.ID,
			Content:       p.Content,
			ScheduledTime: formatTime(p.ScheduledTime),
			CreatedAt:     formatTime(p.CreatedAt),
			IsPublished:   p.IsPublished,
		})
	}
	return json.Marshal(records)
}

func decodePosts(data []byte) ([]domain.Post, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(records))
	for i, r := range records {
		scheduled, err := time.Parse(time.RFC3339Nano, r.ScheduledTime)
		if err != nil {
			return nil, fmt.Errorf("post %d (%q): invalid scheduledTime: %w", i, r.ID, err)
		}
		created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("post %d (%q): invalid createdAt: %w", i, r.ID, err)
		}
		posts = append(posts, domain.Post{
			ID:            r.ID,
			Content:       r.Content,
			ScheduledTime: scheduled,
			CreatedAt:     created,
			IsPublished:   r.IsPublished,
		})
	}
	return posts, nil
}
