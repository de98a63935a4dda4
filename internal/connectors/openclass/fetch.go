package openclass

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// FetchClasses lists the classes visible to the account.
func (c *Client) FetchClasses(ctx context.Context) ([]domain.Class, error) {
	env, err := c.get(ctx, "classes", "/v1/classes")
	if err != nil {
		return nil, err
	}

	inner, err := env.innerObject()
	if err != nil {
		return nil, err
	}
	var list classList
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}

	classes := make([]domain.Class, 0, len(list.Data))
	for _, d := range list.Data {
		classes = append(classes, domain.Class{
			ID:         d.ID,
			Name:       d.Name,
			FriendlyID: d.FriendlyID,
		})
	}
	return classes, nil
}

// FetchClassStructure maps assignment ids to unit names.
// A response of unexpected shape yields an empty map, not an error.
func (c *Client) FetchClassStructure(ctx context.Context, classID string) (domain.SectionMap, error) {
	env, err := c.get(ctx, "class_structure", "/v1/classes/"+url.PathEscape(classID))
	if err != nil {
		return nil, err
	}

	inner, err := env.innerObject()
	if err != nil {
		logger.Debug("openclass: class %s structure has no objects: %v", classID, err)
		return domain.SectionMap{}, nil
	}
	var detail classDetail
	if err := json.Unmarshal(inner, &detail); err != nil {
		logger.Debug("openclass: class %s structure not decodable: %v", classID, err)
		return domain.SectionMap{}, nil
	}
	return detail.sections(), nil
}

// FetchProgressions fetches one zero-indexed page, newest completions first.
func (c *Client) FetchProgressions(ctx context.Context, classID string, page int) (*domain.ProgressionPage, error) {
	path := fmt.Sprintf("/v1/classes/%s/progressions?return_count=%d&page=%d&sort_by_completed_at=-1",
		url.PathEscape(classID), c.cfg.PageSize, page)

	env, err := c.get(ctx, "progressions", path)
	if err != nil {
		return nil, err
	}

	inner, err := env.innerObject()
	if err != nil {
		return nil, err
	}
	var list progressionList
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("decode progressions page %d: %w", page, err)
	}

	out := &domain.ProgressionPage{
		Records:     make([]domain.ProgressionRecord, 0, len(list.Data)),
		CanLoadMore: list.Metadata.CanLoadMore,
	}
	for i := range list.Data {
		rec, err := list.Data[i].record(classID)
		if err != nil {
			return nil, fmt.Errorf("page %d record %d: %w", page, i, err)
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}
