package natssrv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/reqcodec"
	"github.com/programme-lv/trainer/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu        sync.Mutex
	published map[string][][]byte
	sub       *fakeSub
}

// fakeSub buffers every published request, like a subscription without
// pending limits.
type fakeSub struct {
	msgs    chan *nats.Msg
	fetched atomic.Int32
}

func (f *fakeSub) NextMsgWithContext(ctx context.Context) (*nats.Msg, error) {
	select {
	case msg := <-f.msgs:
		f.fetched.Add(1)
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeSub) Unsubscribe() error { return nil }

func newFakeConn() *fakeConn {
	return &fakeConn{
		published: map[string][][]byte{},
		sub:       &fakeSub{msgs: make(chan *nats.Msg, 64)},
	}
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[subj] = append(f.published[subj], data)
	return nil
}

func (f *fakeConn) QueueSubscribeSync(subj, queue string) (Subscription, error) {
	return f.sub, nil
}

func (f *fakeConn) messages(subj string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.published[subj]...)
}


type fakeRunner struct{}

func (fakeRunner) RunTests(ctx context.Context, req api.ExecReq, gath tester.ResultGatherer) ([]api.TestCaseResult, error) {
	gath.StartJob(req.Language, len(req.Tests), "")
	results := make([]api.TestCaseResult, 0, len(req.Tests))
	for i, test := range req.Tests {
		gath.ReachTest(i, test)
		r := api.TestCaseResult{Input: test.Input, ExpectedOutput: test.ExpectedOutput, ActualOutput: test.ExpectedOutput}
		results = append(results, r)
		gath.FinishTest(i, r, nil)
	}
	gath.FinishJob(results, nil)
	return results, nil
}

func lastMsgType(t *testing.T, payloads [][]byte) api.MsgType {
	t.Helper()
	require.NotEmpty(t, payloads)
	var h api.Header
	require.NoError(t, json.Unmarshal(payloads[len(payloads)-1], &h))
	return h.MsgType
}

func TestHandleZstdRequest(t *testing.T) {
	conn := newFakeConn()
	s := New(conn, "trainer.exec", "trainer", fakeRunner{}, 2, nil)

	body, err := reqcodec.Encode(api.ExecReq{
		EvalUuid: "eval-1",
		Language: "c",
		Tests:    []api.Test{{Input: "1", ExpectedOutput: "1"}},
	}, reqcodec.EncodingZstd)
	require.NoError(t, err)

	msg := nats.NewMsg("trainer.exec")
	msg.Reply = "_INBOX.1"
	msg.Data = body
	msg.Header.Set(reqcodec.EncodingHeader, reqcodec.EncodingZstd)
	s.handle(context.Background(), msg)

	payloads := conn.messages("_INBOX.1")
	assert.Len(t, payloads, 4)
	assert.Equal(t, api.FinishJobMsg, lastMsgType(t, payloads))

	var done api.FinishJob
	require.NoError(t, json.Unmarshal(payloads[3], &done))
	assert.Equal(t, "eval-1", done.EvalUuid)
	assert.True(t, done.AllPassed)
}

func TestHandleMalformedRequestReportsError(t *testing.T) {
	conn := newFakeConn()
	s := New(conn, "trainer.exec", "trainer", fakeRunner{}, 1, nil)

	s.handle(context.Background(), &nats.Msg{Subject: "trainer.exec", Reply: "_INBOX.2", Data: []byte("{")})

	payloads := conn.messages("_INBOX.2")
	require.Len(t, payloads, 1)
	var done api.FinishJob
	require.NoError(t, json.Unmarshal(payloads[0], &done))
	assert.True(t, done.InternalError)
	require.NotNil(t, done.ErrorMessage)
}

func TestServeUntilCancelled(t *testing.T) {
	conn := newFakeConn()
	s := New(conn, "trainer.exec", "trainer", fakeRunner{}, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	conn.sub.msgs <- &nats.Msg{
		Subject: "trainer.exec",
		Reply:   "_INBOX.3",
		Data:    []byte(`{"eval_uuid":"eval-3","language":"ocaml","tests":[{"input":"","expected_output":""}]}`),
	}

	require.Eventually(t, func() bool { return len(conn.messages("_INBOX.3")) == 4 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

// slowRunner holds each request for a while and records how many run at
// once.
type slowRunner struct {
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *slowRunner) RunTests(ctx context.Context, req api.ExecReq, gath tester.ResultGatherer) ([]api.TestCaseResult, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		peak := r.peak.Load()
		if n <= peak || r.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(r.delay)
	return fakeRunner{}.RunTests(ctx, req, gath)
}

func TestServeHandlesBurstBeyondConcurrencyLimit(t *testing.T) {
	conn := newFakeConn()
	runner := &slowRunner{delay: 200 * time.Millisecond}
	s := New(conn, "trainer.exec", "trainer", runner, 1, nil)

	const requests = 6
	for i := 0; i < requests; i++ {
		conn.sub.msgs <- &nats.Msg{
			Subject: "trainer.exec",
			Reply:   fmt.Sprintf("_INBOX.burst.%d", i),
			Data:    []byte(fmt.Sprintf(`{"eval_uuid":"burst-%d","language":"c","tests":[{"input":"","expected_output":""}]}`, i)),
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	// While the single worker is busy, no further request is taken.
	require.Eventually(t, func() bool { return runner.inFlight.Load() == 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, int32(1), conn.sub.fetched.Load())

	require.Eventually(t, func() bool {
		for i := 0; i < requests; i++ {
			payloads := conn.messages(fmt.Sprintf("_INBOX.burst.%d", i))
			if len(payloads) != 4 {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, int32(1), runner.peak.Load())
	assert.Equal(t, int32(requests), conn.sub.fetched.Load())
	for i := 0; i < requests; i++ {
		assert.Equal(t, api.FinishJobMsg, lastMsgType(t, conn.messages(fmt.Sprintf("_INBOX.burst.%d", i))))
	}
}
