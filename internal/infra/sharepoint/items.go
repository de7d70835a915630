package sharepoint

import (
	"context"
	"net/url"
	"strconv"

	"github.com/minhvo/spsweep/internal/core/domain"
)

const itemPageSize = 500

// Items enumerates all items of a list in page-retrieval order, following
// server paging links until exhausted. The compliance flag arrives as a
// string field; non-numeric or empty values map to a nil flag.
func (s *Session) Items(ctx context.Context, listTitle string) ([]domain.Item, error) {
	next := s.siteURL + "/_api/web/lists/getbytitle('" + url.PathEscape(listTitle) +
		"')/items?$select=Id,FileLeafRef,_ComplianceFlags&$top=" + strconv.Itoa(itemPageSize)

	var items []domain.Item
	for next != "" {
		var payload struct {
			Value []struct {
				ID              int    `json:"Id"`
				FileLeafRef     string `json:"FileLeafRef"`
				ComplianceFlags string `json:"_ComplianceFlags"`
			} `json:"value"`
			NextLink string `json:"odata.nextLink"`
		}
		if err := s.client.get(ctx, "list items", next, &payload); err != nil {
			return nil, err
		}
		for _, it := range payload.Value {
			items = append(items, domain.Item{
				ID:             it.ID,
				DisplayName:    it.FileLeafRef,
				ComplianceFlag: parseFlag(it.ComplianceFlags),
			})
		}
		next = payload.NextLink
	}
	return items, nil
}

// UnlockItem clears the record lock on one item. The service reports
// whether anything was actually changed.
func (s *Session) UnlockItem(ctx context.Context, listTitle string, itemID int) (bool, error) {
	var payload struct {
		Value bool `json:"value"`
	}
	reqURL := s.siteURL + policyProxy + "UnlockRecordItem"
	body := map[string]any{
		"listUrl": s.listURL(listTitle),
		"itemId":  itemID,
	}
	if err := s.client.post(ctx, "unlock item", reqURL, body, &payload); err != nil {
		return false, err
	}
	return payload.Value, nil
}

func parseFlag(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return domain.Flag(n)
}
