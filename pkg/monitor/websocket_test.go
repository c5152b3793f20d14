package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.outcomes/pkg/outcome"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_StreamsSubmissions(t *testing.T) {
	collector := NewEventCollector()
	server := NewServer("", collector, NewDashboardData())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	first := readFrame(t, conn)
	assert.Equal(t, MessageDashboard, first.Type)
	assert.Equal(t, 1, server.Clients())

	collector.OutcomeSubmitted(submission(outcome.StatusSuccess, "outcome_data"))

	next := readFrame(t, conn)
	require.Equal(t, MessageSubmission, next.Type)
	var event SubmissionEvent
	require.NoError(t, json.Unmarshal(next.Data, &event))
	assert.Equal(t, EventSubmitted, event.Type)
	assert.Equal(t, "sourced-1", event.SourcedID)
	assert.Equal(t, []string{"outcome_data"}, event.Extensions)
}

func TestServer_InitialDashboardReflectsHistory(t *testing.T) {
	collector := NewEventCollector()
	server := NewServer("", collector, NewDashboardData())
	collector.OutcomeSubmitted(submission(outcome.StatusSuccess))

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	f := readFrame(t, dial(t, ts))
	var snap DashboardSnapshot
	require.NoError(t, json.Unmarshal(f.Data, &snap))
	assert.Contains(t, snap.Results, "sourced-1")
}

func TestServer_ConnectDuringEmitMissesNothing(t *testing.T) {
	const total = 40
	collector := NewEventCollector()
	server := NewServer("", collector, NewDashboardData())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			collector.OutcomeSubmitted(submission(outcome.StatusSuccess))
		}
	}()

	conn := dial(t, ts)
	first := readFrame(t, conn)
	require.Equal(t, MessageDashboard, first.Type)
	var snap DashboardSnapshot
	require.NoError(t, json.Unmarshal(first.Data, &snap))
	<-done

	seen := snap.Results["sourced-1"].Attempts
	for seen < total {
		f := readFrame(t, conn)
		require.Equal(t, MessageSubmission, f.Type)
		seen++
	}
	assert.Equal(t, total, seen)
	assert.Equal(t, total, server.dashboard.Snapshot().Results["sourced-1"].Attempts)
}

func TestServer_ClientDisconnectUnregisters(t *testing.T) {
	server := NewServer("", NewEventCollector(), NewDashboardData())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readFrame(t, conn)
	require.Equal(t, 1, server.Clients())

	conn.Close()
	assert.Eventually(t, func() bool { return server.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_HTTPEndpoints(t *testing.T) {
	collector := NewEventCollector()
	server := NewServer("", collector, NewDashboardData())
	collector.OutcomeSubmitted(submission(outcome.StatusFailure))
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	var stats CollectorStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1, stats.Failed)

	resp, err = http.Get(ts.URL + "/dashboard")
	require.NoError(t, err)
	var snap DashboardSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 1, snap.Summary.Failed)
}

func TestServer_EventsRequiresUpgrade(t *testing.T) {
	ts := httptest.NewServer(NewServer("", NewEventCollector(), NewDashboardData()).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_StartAndCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	server := NewServer(addr, NewEventCollector(), NewDashboardData())

	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server didn't shut down in time")
	}
}

func TestServer_StartInvalidAddress(t *testing.T) {
	server := NewServer("invalid:address:format:99999", NewEventCollector(), NewDashboardData())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.Error(t, server.Start(ctx))
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer("", NewEventCollector(), NewDashboardData())
	assert.NoError(t, server.Stop(context.Background()))
}
