package server

import (
	"io/ioutil"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestStartServesInBackground(t *testing.T) {
	srv := New("127.0.0.1:0", okHandler(), log.NewNopLogger())
	require.NoError(t, srv.Start())
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr().String() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestStartTwice(t *testing.T) {
	srv := New("127.0.0.1:0", okHandler(), log.NewNopLogger())
	require.NoError(t, srv.Start())
	defer srv.Stop()
	assert.Equal(t, ErrAlreadyStarted, srv.Start())
}

func TestStartPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := New(ln.Addr().String(), okHandler(), log.NewNopLogger())
	assert.Error(t, srv.Start())
	assert.Nil(t, srv.Addr())
}

func TestStopUnblocksWaitAndReleasesSocket(t *testing.T) {
	srv := New("127.0.0.1:0", okHandler(), log.NewNopLogger())
	require.NoError(t, srv.Start())
	addr := srv.Addr().String()

	waited := make(chan error, 1)
	go func() { waited <- srv.Wait() }()

	require.NoError(t, srv.Stop())
	select {
	case err := <-waited:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Stop")
	}

	assert.NotPanics(t, func() { srv.Stop() })

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	ln.Close()
}

func TestStopWithRequestInFlight(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	hang := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	srv := New("127.0.0.1:0", hang, log.NewNopLogger())
	require.NoError(t, srv.Start())

	go http.Get("http://" + srv.Addr().String() + "/")
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		srv.Stop()
		srv.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on in-flight request")
	}
}

func TestStopBeforeStart(t *testing.T) {
	srv := New("127.0.0.1:0", okHandler(), log.NewNopLogger())
	require.NoError(t, srv.Stop())
	assert.NoError(t, srv.Wait())
}
