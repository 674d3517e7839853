package appleads

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ListAdGroups(ctx context.Context, campaignID int64, status CampaignStatus, limit int) (Page[AdGroup], error) {
	if !status.IsSet() {
		return listAll[AdGroup](ctx, c, fmt.Sprintf("/campaigns/%d/adgroups", campaignID), limit)
	}
	sel := Selector{Conditions: []Condition{Where("status", status.String())}}
	return findAll[AdGroup](ctx, c, fmt.Sprintf("/campaigns/%d/adgroups/find", campaignID), sel, limit)
}

func (c *Client) GetAdGroup(ctx context.Context, campaignID, adGroupID int64) (AdGroup, error) {
	ag, _, err := call[AdGroup](ctx, c, http.MethodGet, fmt.Sprintf("/campaigns/%d/adgroups/%d", campaignID, adGroupID), nil)
	return ag, err
}

func (c *Client) CreateAdGroup(ctx context.Context, campaignID int64, in AdGroupCreate) (AdGroup, error) {
	if in.StartTime == "" {
		in.StartTime = c.now().UTC().Format("2006-01-02T15:04:05.000")
	}
	body := struct {
		AdGroupCreate
		CampaignID   int64  `json:"campaignId"`
		PricingModel string `json:"pricingModel"`
	}{AdGroupCreate: in, CampaignID: campaignID, PricingModel: "CPC"}
	ag, _, err := call[AdGroup](ctx, c, http.MethodPost, fmt.Sprintf("/campaigns/%d/adgroups", campaignID), body)
	return ag, err
}

func (c *Client) UpdateAdGroup(ctx context.Context, campaignID, adGroupID int64, in AdGroupUpdate) (AdGroup, error) {
	ag, _, err := call[AdGroup](ctx, c, http.MethodPut, fmt.Sprintf("/campaigns/%d/adgroups/%d", campaignID, adGroupID), in)
	return ag, err
}

func (c *Client) DeleteAdGroup(ctx context.Context, campaignID, adGroupID int64) error {
	_, err := c.requestJSON(ctx, http.MethodDelete, fmt.Sprintf("/campaigns/%d/adgroups/%d", campaignID, adGroupID), nil)
	return err
}
