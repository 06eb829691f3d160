package brapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pilosa/brapi2isa"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// AllTrials can be passed as the only trial id to Trials to get every trial
// the server holds.
const AllTrials = "all"

var _ brapi2isa.AttributeFetcher = &Client{}

// object gets a single-resource response and returns its result object.
func (c *Client) object(ctx context.Context, resource string) (map[string]interface{}, error) {
	raw, err := c.do(ctx, http.MethodGet, resource, nil, nil)
	if err != nil {
		return nil, err
	}
	p, err := decodePage(raw, c.cfg.PageSize)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", resource)
	}
	if len(p.records) != 1 {
		return nil, errors.Errorf("expected one record from %s, got %d", resource, len(p.records))
	}
	obj, ok := p.records[0].(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("record from %s is not an object, but a %T", resource, p.records[0])
	}
	return obj, nil
}

// Trials gets the trials with the given ids, or all trials if ids is just
// AllTrials.
func (c *Client) Trials(ctx context.Context, ids []string) ([]map[string]interface{}, error) {
	if len(ids) == 1 && ids[0] == AllTrials {
		trials, err := brapi2isa.Collect(c.Paginate(ctx, "trials", nil, nil, http.MethodGet))
		return trials, errors.Wrap(err, "getting all trials")
	}
	trials := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		trial, err := c.object(ctx, "trials/"+url.PathEscape(id))
		if err != nil {
			return nil, errors.Wrapf(err, "getting trial %s", id)
		}
		trials = append(trials, trial)
	}
	return trials, nil
}

// Study gets the study with the given id.
func (c *Client) Study(ctx context.Context, id string) (map[string]interface{}, error) {
	study, err := c.object(ctx, "studies/"+url.PathEscape(id))
	return study, errors.Wrapf(err, "getting study %s", id)
}

// StudyGermplasm returns a Source over the germplasm used in a study.
func (c *Client) StudyGermplasm(ctx context.Context, studyID string) *PageSource {
	return c.Paginate(ctx, "studies/"+url.PathEscape(studyID)+"/germplasm", nil, nil, http.MethodGet)
}

// ObservationUnits returns a Source over the observation units of a study,
// each with its observations.
func (c *Client) ObservationUnits(ctx context.Context, studyID string) *PageSource {
	if c.cfg.SearchObservationUnits {
		body := map[string]interface{}{"studyDbIds": []string{studyID}}
		return c.Paginate(ctx, "phenotypes-search", nil, body, http.MethodPost)
	}
	return c.Paginate(ctx, "studies/"+url.PathEscape(studyID)+"/observationunits", nil, nil, http.MethodGet)
}

// ObservationVariables returns a Source over the variables observed in a
// study.
func (c *Client) ObservationVariables(ctx context.Context, studyID string) *PageSource {
	return c.Paginate(ctx, "studies/"+url.PathEscape(studyID)+"/observationvariables", nil, nil, http.MethodGet)
}

// GermplasmAttributes gets the full record of a germplasm with its keys in
// the order the server sent them.
func (c *Client) GermplasmAttributes(ctx context.Context, germplasmID string) (brapi2isa.Attributes, error) {
	resource := "germplasm/" + url.PathEscape(germplasmID)
	raw, err := c.do(ctx, http.MethodGet, resource, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "getting germplasm %s", germplasmID)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.Errorf("invalid JSON from %s", resource)
	}
	result := gjson.GetBytes(raw, "result")
	if data := result.Get("data"); data.IsArray() {
		arr := data.Array()
		if len(arr) != 1 {
			return nil, errors.Errorf("expected one germplasm from %s, got %d", resource, len(arr))
		}
		result = arr[0]
	}
	if !result.IsObject() {
		return nil, errors.Errorf("result from %s is not an object", resource)
	}

	attrs := make(brapi2isa.Attributes, 0)
	var derr error
	result.ForEach(func(key, value gjson.Result) bool {
		var v interface{}
		if err := decodeJSON([]byte(value.Raw), &v); err != nil {
			derr = errors.Wrapf(err, "decoding attribute '%s'", key.String())
			return false
		}
		attrs = append(attrs, brapi2isa.Attribute{Key: key.String(), Value: v})
		return true
	})
	if derr != nil {
		return nil, errors.Wrapf(derr, "decoding germplasm %s", germplasmID)
	}
	return attrs, nil
}
