package sharepoint

import (
	"context"

	"github.com/minhvo/spsweep/internal/core/domain"
)

const policyProxy = "/_api/SP.CompliancePolicy.SPPolicyStoreProxy."

// Label fetches the retention label applied to a list, or nil when the
// list carries none.
func (s *Session) Label(ctx context.Context, listTitle string) (*domain.Label, error) {
	var payload struct {
		Value struct {
			TagName string `json:"TagName"`
		} `json:"value"`
	}
	url := s.siteURL + policyProxy + "GetListComplianceTag"
	body := map[string]string{"listUrl": s.listURL(listTitle)}
	if err := s.client.post(ctx, "get label", url, body, &payload); err != nil {
		return nil, err
	}
	if payload.Value.TagName == "" {
		return nil, nil
	}
	return &domain.Label{Name: payload.Value.TagName}, nil
}

// ResetLabel clears the retention label metadata on a list.
func (s *Session) ResetLabel(ctx context.Context, listTitle string) error {
	url := s.siteURL + policyProxy + "SetListComplianceTag"
	body := map[string]any{
		"listUrl":            s.listURL(listTitle),
		"complianceTagValue": "",
		"blockDelete":        false,
		"blockEdit":          false,
		"syncToItems":        false,
	}
	return s.client.post(ctx, "reset label", url, body, nil)
}

// ApplyLabel applies a retention label to a list.
func (s *Session) ApplyLabel(ctx context.Context, listTitle, name string) error {
	url := s.siteURL + policyProxy + "SetListComplianceTag"
	body := map[string]any{
		"listUrl":            s.listURL(listTitle),
		"complianceTagValue": name,
		"blockDelete":        false,
		"blockEdit":          false,
		"syncToItems":        true,
	}
	return s.client.post(ctx, "apply label", url, body, nil)
}

func (s *Session) listURL(listTitle string) string {
	return s.siteURL + "/" + listTitle
}
