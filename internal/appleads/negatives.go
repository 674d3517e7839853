package appleads

import (
	"context"
	"fmt"
	"net/http"
)

// negativesPath addresses campaign-level negatives when adGroupID is 0.
func negativesPath(campaignID, adGroupID int64) string {
	if adGroupID == 0 {
		return fmt.Sprintf("/campaigns/%d/negativekeywords", campaignID)
	}
	return fmt.Sprintf("/campaigns/%d/adgroups/%d/negativekeywords", campaignID, adGroupID)
}

func (c *Client) ListNegativeKeywords(ctx context.Context, campaignID, adGroupID int64, limit int) (Page[NegativeKeyword], error) {
	return listAll[NegativeKeyword](ctx, c, negativesPath(campaignID, adGroupID), limit)
}

func (c *Client) CreateNegativeKeywords(ctx context.Context, campaignID, adGroupID int64, in []NegativeKeywordCreate) ([]NegativeKeyword, error) {
	kws, _, err := call[[]NegativeKeyword](ctx, c, http.MethodPost, negativesPath(campaignID, adGroupID)+"/bulk", in)
	return kws, err
}

func (c *Client) DeleteNegativeKeywords(ctx context.Context, campaignID, adGroupID int64, ids []int64) error {
	_, err := c.requestJSON(ctx, http.MethodPost, negativesPath(campaignID, adGroupID)+"/delete/bulk", ids)
	return err
}
