package main

import (
	"bytes"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunUsage(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"No port", []string{}},
		{"Two ports", []string{"1", "2"}},
		{"Non-numeric port", []string{"abc"}},
		{"Port out of range", []string{"70000"}},
		{"Unknown flag", []string{"-nosuchflag", "12345"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &syncBuffer{}
			code := run(append([]string{"ocsp-mockserver"}, tc.args...), out, nil)
			assert.Equal(t, 2, code)
			assert.Contains(t, out.String(), "Usage: ocsp-mockserver [flags] PORT")
			assert.NotContains(t, out.String(), "HTTP Server Running")
		})
	}
}

func TestRunPrintsBoundPortAndStops(t *testing.T) {
	out := &syncBuffer{}
	stop := make(chan os.Signal, 1)
	exited := make(chan int, 1)
	go func() {
		exited <- run([]string{"ocsp-mockserver", "-bind", "127.0.0.1", "0"}, out, stop)
	}()

	banner := regexp.MustCompile(`HTTP Server Running on PORT (\d+)\.+`)
	var port int
	require.Eventually(t, func() bool {
		m := banner.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		port, _ = strconv.Atoi(m[1])
		return true
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotZero(t, port)

	resp, err := http.Get("http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port)) + "/invocations")
	require.NoError(t, err)
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "0", string(body))

	stop <- os.Interrupt
	select {
	case code := <-exited:
		assert.Equal(t, 0, code)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after stop")
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	ln.Close()
}

func TestRunPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	out := &syncBuffer{}
	code := run([]string{"ocsp-mockserver", "-bind", "127.0.0.1", port}, out, nil)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Could not listen on PORT "+port)
}
