package m2m

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// FetchSensorSubsites lists the subsites registered in the sensor
// inventory.
func (c *Client) FetchSensorSubsites(ctx context.Context) ([]string, error) {
	var subsites []string
	if err := c.getJSON(ctx, "sensor_inv", c.BuildURL(SensorPort, "sensor/inv"), &subsites); err != nil {
		return nil, err
	}
	return subsites, nil
}

// FetchDeploymentSubsites lists the subsites carrying deployment events.
// Doubles as the connectivity probe for a freshly configured client.
func (c *Client) FetchDeploymentSubsites(ctx context.Context) ([]string, error) {
	var subsites []string
	if err := c.getJSON(ctx, "deployment_inv", c.BuildURL(DeploymentPort, "events/deployment/inv"), &subsites); err != nil {
		return nil, err
	}
	return subsites, nil
}

// FetchInstrumentStreams returns the stream/method products of one
// instrument with their availability bounds. An instrument unknown to the
// inventory yields an empty slice, not an error.
func (c *Client) FetchInstrumentStreams(ctx context.Context, rd uframe.RefDes) ([]uframe.Stream, error) {
	rawURL := c.BuildURL(SensorPort, fmt.Sprintf("sensor/inv/%s/metadata/times", rd.Path()))
	var streams []uframe.Stream
	if err := c.getJSON(ctx, "metadata_times", rawURL, &streams); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return streams, nil
}

// FetchInstrumentDeployments returns the deployment events whose reference
// designator matches refDes, which may be partial. Events without a usable
// start time are dropped with a warning.
func (c *Client) FetchInstrumentDeployments(ctx context.Context, refDes string) ([]uframe.DeploymentEvent, error) {
	rawURL := c.BuildURL(DeploymentPort, "events/deployment/query?refdes="+refDes)
	var events []uframe.DeploymentEvent
	if err := c.getJSON(ctx, "deployment_query", rawURL, &events); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}

	valid := make([]uframe.DeploymentEvent, 0, len(events))
	for _, ev := range events {
		if _, ok := ev.StartTime(); !ok {
			c.logger.Warn("deployment event without start time",
				zap.String("reference_designator", ev.ReferenceDesignator.String()),
				zap.Int("deployment_number", ev.DeploymentNumber))
			continue
		}
		valid = append(valid, ev)
	}
	return valid, nil
}

// FetchInstrumentMetadata returns the full metadata record of an
// instrument as raw JSON.
func (c *Client) FetchInstrumentMetadata(ctx context.Context, rd uframe.RefDes) (json.RawMessage, error) {
	rawURL := c.BuildURL(SensorPort, fmt.Sprintf("sensor/inv/%s/metadata", rd.Path()))
	return c.doRequest(ctx, "metadata", rawURL)
}

// FetchInstrumentParameters returns the parameter listing of an
// instrument as raw JSON.
func (c *Client) FetchInstrumentParameters(ctx context.Context, rd uframe.RefDes) (json.RawMessage, error) {
	rawURL := c.BuildURL(SensorPort, fmt.Sprintf("sensor/inv/%s/metadata/parameters", rd.Path()))
	return c.doRequest(ctx, "metadata_parameters", rawURL)
}

// FetchTOC returns the sensor inventory table of contents.
func (c *Client) FetchTOC(ctx context.Context) (*uframe.TOC, error) {
	var toc uframe.TOC
	if err := c.getJSON(ctx, "toc", c.BuildURL(SensorPort, "sensor/inv/toc"), &toc); err != nil {
		return nil, err
	}
	return &toc, nil
}

func notFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
