package appleads

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

const SupplySourceSearchResults = "APPSTORE_SEARCH_RESULTS"

// ListCampaigns returns campaigns, optionally filtered by status. limit <= 0
// returns every campaign.
func (c *Client) ListCampaigns(ctx context.Context, status CampaignStatus, limit int) (Page[Campaign], error) {
	if !status.IsSet() {
		return listAll[Campaign](ctx, c, "/campaigns", limit)
	}
	return c.FindCampaigns(ctx, Selector{Conditions: []Condition{Where("status", status.String())}}, limit)
}

func (c *Client) FindCampaigns(ctx context.Context, sel Selector, limit int) (Page[Campaign], error) {
	return findAll[Campaign](ctx, c, "/campaigns/find", sel, limit)
}

func (c *Client) GetCampaign(ctx context.Context, campaignID int64) (Campaign, error) {
	campaign, _, err := call[Campaign](ctx, c, http.MethodGet, fmt.Sprintf("/campaigns/%d", campaignID), nil)
	return campaign, err
}

type campaignCreateBody struct {
	CampaignCreate
	OrgID         int64  `json:"orgId"`
	AdChannelType string `json:"adChannelType"`
	BillingEvent  string `json:"billingEvent"`
}

func (c *Client) CreateCampaign(ctx context.Context, in CampaignCreate) (Campaign, error) {
	orgID, _ := strconv.ParseInt(c.creds.OrgID, 10, 64)
	if len(in.SupplySources) == 0 {
		in.SupplySources = []string{SupplySourceSearchResults}
	}
	body := campaignCreateBody{
		CampaignCreate: in,
		OrgID:          orgID,
		AdChannelType:  "SEARCH",
		BillingEvent:   "TAPS",
	}
	campaign, _, err := call[Campaign](ctx, c, http.MethodPost, "/campaigns", body)
	return campaign, err
}

func (c *Client) UpdateCampaign(ctx context.Context, campaignID int64, in CampaignUpdate) (Campaign, error) {
	body := map[string]any{"campaign": in}
	campaign, _, err := call[Campaign](ctx, c, http.MethodPut, fmt.Sprintf("/campaigns/%d", campaignID), body)
	return campaign, err
}

func (c *Client) DeleteCampaign(ctx context.Context, campaignID int64) error {
	_, err := c.requestJSON(ctx, http.MethodDelete, fmt.Sprintf("/campaigns/%d", campaignID), nil)
	return err
}
