package sharepoint

import (
	"context"

	"github.com/minhvo/spsweep/internal/core/domain"
)

// Lists enumerates the site's lists, filtered to visible, non-empty lists
// whose title is not in the ignore set. The result is a snapshot in the
// order the service returned it; callers consume it once and never
// re-query mid-traversal.
func (s *Session) Lists(ctx context.Context) ([]domain.ListRef, error) {
	var payload struct {
		Value []struct {
			Title     string `json:"Title"`
			Hidden    bool   `json:"Hidden"`
			ItemCount int    `json:"ItemCount"`
		} `json:"value"`
	}

	url := s.siteURL + "/_api/web/lists?$select=Title,Hidden,ItemCount"
	if err := s.client.get(ctx, "enumerate lists", url, &payload); err != nil {
		return nil, err
	}

	lists := make([]domain.ListRef, 0, len(payload.Value))
	for _, l := range payload.Value {
		if l.Hidden || l.ItemCount == 0 {
			continue
		}
		if _, skip := s.client.ignore[l.Title]; skip {
			s.client.log.Debug("skipping ignored list", "site", s.siteURL, "list", l.Title)
			continue
		}
		lists = append(lists, domain.ListRef{
			SiteURL:   s.siteURL,
			Title:     l.Title,
			ItemCount: l.ItemCount,
		})
	}
	return lists, nil
}
