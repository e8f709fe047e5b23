package feed_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/pkg/feed"
)

// fakeConn feeds scripted frames to the client and records writes.
type fakeConn struct {
	mu     sync.Mutex
	frames chan []byte
	writes [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 16)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.frames
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return 1, data, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("write on closed connection")
	}
	f.writes = append(f.writes, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.frames)
	}
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetReadLimit(int64)               {}

func (f *fakeConn) writtenPayloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// fakeDialer hands out a fresh fakeConn per dial.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

func (d *fakeDialer) DialContext(context.Context, string, http.Header) (feed.Conn, *http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

var _ = Describe("Client", func() {
	var (
		client *feed.Client
		dialer *fakeDialer
		cfg    feed.Config
	)

	BeforeEach(func() {
		dialer = &fakeDialer{}
		cfg = feed.DefaultConfig()
		cfg.URL = "wss://feed.test/ws"
		cfg.ReconnectInitialDelay = time.Millisecond
		cfg.ReconnectMaxDelay = 5 * time.Millisecond

		var err error
		client, err = feed.NewClient(cfg, dialer, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an invalid configuration", func() {
		bad := feed.DefaultConfig()
		_, err := feed.NewClient(bad, dialer, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	It("delivers frames from the connection", func() {
		Expect(client.Start(context.Background())).To(Succeed())
		defer client.Stop()

		dialer.conn(0).frames <- []byte(`{"channel":"l2Book"}`)

		Eventually(client.Messages()).Should(Receive(Equal([]byte(`{"channel":"l2Book"}`))))
		Expect(client.IsConnected()).To(BeTrue())
	})

	It("replays subscriptions on connect", func() {
		client.Subscribe(map[string]string{"method": "subscribe", "coin": "BTC"})
		Expect(client.Start(context.Background())).To(Succeed())
		defer client.Stop()

		Eventually(func() int {
			return len(dialer.conn(0).writtenPayloads())
		}).Should(Equal(1))
		Expect(string(dialer.conn(0).writtenPayloads()[0])).To(ContainSubstring("BTC"))
	})

	It("redials after the connection drops", func() {
		client.Subscribe(map[string]string{"method": "subscribe", "coin": "ETH"})
		Expect(client.Start(context.Background())).To(Succeed())
		defer client.Stop()

		dialer.conn(0).Close()

		Eventually(dialer.dialCount).Should(BeNumerically(">=", 2))
		Eventually(func() int {
			return len(dialer.conn(1).writtenPayloads())
		}).Should(Equal(1))
	})
})
