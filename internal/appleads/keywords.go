package appleads

import (
	"context"
	"fmt"
	"net/http"
)

func keywordsPath(campaignID, adGroupID int64) string {
	return fmt.Sprintf("/campaigns/%d/adgroups/%d/targetingkeywords", campaignID, adGroupID)
}

func (c *Client) ListKeywords(ctx context.Context, campaignID, adGroupID int64, limit int) (Page[Keyword], error) {
	return listAll[Keyword](ctx, c, keywordsPath(campaignID, adGroupID), limit)
}

func (c *Client) GetKeyword(ctx context.Context, campaignID, adGroupID, keywordID int64) (Keyword, error) {
	kw, _, err := call[Keyword](ctx, c, http.MethodGet, fmt.Sprintf("%s/%d", keywordsPath(campaignID, adGroupID), keywordID), nil)
	return kw, err
}

// CreateKeywords adds targeting keywords in one bulk request.
func (c *Client) CreateKeywords(ctx context.Context, campaignID, adGroupID int64, in []KeywordCreate) ([]Keyword, error) {
	kws, _, err := call[[]Keyword](ctx, c, http.MethodPost, keywordsPath(campaignID, adGroupID)+"/bulk", in)
	return kws, err
}

func (c *Client) UpdateKeywords(ctx context.Context, campaignID, adGroupID int64, in []KeywordUpdate) ([]Keyword, error) {
	kws, _, err := call[[]Keyword](ctx, c, http.MethodPut, keywordsPath(campaignID, adGroupID)+"/bulk", in)
	return kws, err
}

func (c *Client) DeleteKeyword(ctx context.Context, campaignID, adGroupID, keywordID int64) error {
	_, err := c.requestJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", keywordsPath(campaignID, adGroupID), keywordID), nil)
	return err
}
