package m2m

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

const metadataTimesPayload = `[
	{"stream": "dosta_abcdjm_dcl_instrument", "method": "telemetered", "count": 431250,
	 "beginTime": "2017-01-01T00:00:00.000Z", "endTime": "2020-01-01T00:00:00.000Z"},
	{"stream": "dosta_abcdjm_dcl_instrument_recovered", "method": "recovered_host", "count": 431250,
	 "beginTime": "2017-01-01T00:00:00.000Z", "endTime": "2019-10-14T12:13:14.870Z"}
]`

const deploymentQueryPayload = `[
	{"eventId": 101, "deploymentNumber": 1,
	 "referenceDesignator": {"subsite": "CE01ISSM", "node": "MFD35", "sensor": "00-DOSTAD000", "full": true},
	 "eventStartTime": 1475340320000, "eventStopTime": 1491984000000,
	 "assetUid": "CGINS-DOSTAD-00134"},
	{"eventId": 102, "deploymentNumber": 2,
	 "referenceDesignator": "CE01ISSM-MFD35-00-DOSTAD000",
	 "eventStartTime": 1491990000000, "eventStopTime": null},
	{"eventId": 103, "deploymentNumber": 3,
	 "referenceDesignator": "CE01ISSM-MFD35-00-DOSTAD000",
	 "eventStartTime": null, "eventStopTime": null}
]`

func newInventoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/m2m/12576/sensor/inv":
			w.Write([]byte(`["CE01ISSM", "CE02SHSM"]`))
		case "/api/m2m/12587/events/deployment/inv":
			w.Write([]byte(`["CE01ISSM"]`))
		case "/api/m2m/12576/sensor/inv/CE01ISSM/MFD35/00-DOSTAD000/metadata/times":
			w.Write([]byte(metadataTimesPayload))
		case "/api/m2m/12587/events/deployment/query":
			require.Equal(t, "CE01ISSM-MFD35-00-DOSTAD000", r.URL.Query().Get("refdes"))
			w.Write([]byte(deploymentQueryPayload))
		case "/api/m2m/12576/sensor/inv/CE01ISSM/MFD35/00-DOSTAD000/metadata":
			w.Write([]byte(`{"parameters": [], "times": []}`))
		case "/api/m2m/12576/sensor/inv/toc":
			w.Write([]byte(`{"instruments": [], "parameter_definitions": [], "parameters_by_stream": {}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetchSubsites(t *testing.T) {
	server := newInventoryServer(t)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	sensor, err := client.FetchSensorSubsites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CE01ISSM", "CE02SHSM"}, sensor)

	deployment, err := client.FetchDeploymentSubsites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CE01ISSM"}, deployment)
}

func TestFetchInstrumentStreams(t *testing.T) {
	server := newInventoryServer(t)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	rd := uframe.RefDes{Subsite: "CE01ISSM", Node: "MFD35", Sensor: "00-DOSTAD000"}
	streams, err := client.FetchInstrumentStreams(context.Background(), rd)
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, "dosta_abcdjm_dcl_instrument", streams[0].Name)
	assert.Equal(t, "telemetered", streams[0].Method)
	assert.Equal(t, int64(431250), streams[0].Count)
	assert.Equal(t, "2017-01-01T00:00:00.000Z", streams[0].BeginTime)
}

func TestFetchInstrumentStreamsNotFound(t *testing.T) {
	server := newInventoryServer(t)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	rd := uframe.RefDes{Subsite: "GI01SUMO", Node: "SBD11", Sensor: "04-DOSTAD000"}
	streams, err := client.FetchInstrumentStreams(context.Background(), rd)
	require.NoError(t, err)
	assert.Empty(t, streams)
}

func TestFetchInstrumentDeployments(t *testing.T) {
	server := newInventoryServer(t)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	events, err := client.FetchInstrumentDeployments(context.Background(), "CE01ISSM-MFD35-00-DOSTAD000")
	require.NoError(t, err)

	// the event without a start time is dropped
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].DeploymentNumber)
	assert.Equal(t, "CE01ISSM-MFD35-00-DOSTAD000", events[0].ReferenceDesignator.String())
	assert.Equal(t, "CGINS-DOSTAD-00134", events[0].AdditionalFields["assetUid"])
	assert.Equal(t, 2, events[1].DeploymentNumber)
	assert.Nil(t, events[1].EventStopTime)
}

func TestFetchInstrumentMetadata(t *testing.T) {
	server := newInventoryServer(t)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	rd := uframe.RefDes{Subsite: "CE01ISSM", Node: "MFD35", Sensor: "00-DOSTAD000"}
	raw, err := client.FetchInstrumentMetadata(context.Background(), rd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"parameters": [], "times": []}`, string(raw))
}

func TestFetchTOC(t *testing.T) {
	server := newInventoryServer(t)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	toc, err := client.FetchTOC(context.Background())
	require.NoError(t, err)
	assert.Empty(t, toc.Instruments)
	assert.NotNil(t, toc.ParametersByStream)
}
