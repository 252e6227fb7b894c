package fanout

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/core/trial"
	"github.com/charleschow/possession-sim/internal/events"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	cell := sweep.Cell{DirIndex: 12, SpeedIndex: 40, Speed: 10, Status: trial.StatusResolved, Side: physics.SideRed, Probability: 0.93, Band: 2}
	in := events.Event{
		ID:        "e1",
		Type:      events.EventCellResolved,
		SweepID:   "s1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   events.CellResolved{Cell: cell},
	}

	data, err := MarshalEvent(in)
	require.NoError(t, err)
	out, err := UnmarshalEvent(data)
	require.NoError(t, err)

	assert.Equal(t, in.SweepID, out.SweepID)
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	assert.Equal(t, in.Payload, out.Payload)
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"type":"goal","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = UnmarshalEvent([]byte(`{"type":"cell_resolved","payload":"nope"}`))
	assert.ErrorContains(t, err, "unmarshal cell_resolved")
}

func TestServerStreamsToClient(t *testing.T) {
	serverBus := events.NewBus()
	srv := NewServer(serverBus)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	clientBus := events.NewBus()
	got := make(chan events.Event, 4)
	clientBus.Subscribe(events.EventSweepFinished, func(e events.Event) error {
		got <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := NewClient(strings.TrimPrefix(ts.URL, "http://"), clientBus)
	errc := make(chan error, 1)
	go func() { errc <- client.Connect(ctx) }()

	require.Eventually(t, func() bool { return srv.Viewers() == 1 }, 2*time.Second, 10*time.Millisecond)

	serverBus.Publish(events.Event{
		Type:    events.EventSweepFinished,
		SweepID: "s1",
		Payload: events.SweepFinished{Summary: sweep.Summary{Total: 20480, Red: 10}, ElapsedMs: 42},
	})

	select {
	case e := <-got:
		assert.Equal(t, "s1", e.SweepID)
		fin := e.Payload.(events.SweepFinished)
		assert.Equal(t, 20480, fin.Summary.Total)
		assert.Equal(t, int64(42), fin.ElapsedMs)
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
}

func TestListenAndServeLifecycle(t *testing.T) {
	held, err := Listen(0)
	require.NoError(t, err)
	defer held.Close()

	port := held.Addr().(*net.TCPAddr).Port
	_, err = Listen(port)
	assert.ErrorContains(t, err, "fanout listen")

	srv := NewServer(events.NewBus())
	require.NoError(t, srv.Shutdown(context.Background()))

	ln, err := Listen(0)
	require.NoError(t, err)
	assert.NoError(t, srv.Serve(ln))
	_, err = ln.Accept()
	assert.Error(t, err)
}
