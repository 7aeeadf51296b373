// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package skk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ianlewis/go-skk/charset"
)

// ErrNotConnected indicates that the dictionary server connection is not
// open.
var ErrNotConnected = errors.New("not connected")

const (
	skkservLookup     = '1'
	skkservDisconnect = '0'
	skkservNotFound   = '4'
)

// RemoteOptions are options for a RemoteDictionary.
type RemoteOptions struct {
	// Host is the dictionary server host.
	Host string

	// Port is the dictionary server port.
	Port int

	// RequestCharset is the encoding of lookup keys. charset.Auto is treated
	// as EUC-JP.
	RequestCharset charset.Charset

	// ResponseCharset is the encoding of responses. charset.Auto detects the
	// encoding of each response.
	ResponseCharset charset.Charset

	// DialTimeout limits how long Connect waits. Zero means no limit beyond
	// the context passed to Connect.
	DialTimeout time.Duration
}

// DefaultRemoteOptions are the default options for a RemoteDictionary.
var DefaultRemoteOptions = &RemoteOptions{
	Host:            "localhost",
	Port:            1178,
	RequestCharset:  charset.EUCJP,
	ResponseCharset: charset.EUCJP,
}

// RemoteDictionary is a client for an skkserv dictionary server. It holds a
// single connection; requests are serialized so that each response is read
// in full before the next request is sent.
//
// A RemoteDictionary that is not connected, or whose connection failed,
// behaves as an empty dictionary. It does not reconnect.
type RemoteDictionary struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader

	opts RemoteOptions
}

// NewRemoteDictionary returns a new RemoteDictionary. Call Connect to open
// the connection.
func NewRemoteDictionary(opts *RemoteOptions) *RemoteDictionary {
	if opts == nil {
		opts = DefaultRemoteOptions
	}
	o := *opts
	if o.RequestCharset == charset.Auto {
		o.RequestCharset = charset.EUCJP
	}
	return &RemoteDictionary{
		opts: o,
	}
}

// Kind implements [Dictionary.Kind].
func (*RemoteDictionary) Kind() Kind {
	return KindRemote
}

// Addr returns the server address.
func (d *RemoteDictionary) Addr() string {
	return net.JoinHostPort(d.opts.Host, strconv.Itoa(d.opts.Port))
}

// Connect opens the connection to the server. It does nothing if the
// connection is already open.
func (d *RemoteDictionary) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return nil
	}

	dialer := net.Dialer{
		Timeout: d.opts.DialTimeout,
	}
	conn, err := dialer.DialContext(ctx, "tcp", d.Addr())
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", d.Addr(), err)
	}
	d.conn = conn
	d.r = bufio.NewReader(conn)
	return nil
}

// Connected reports whether the connection is open.
func (d *RemoteDictionary) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// Close sends the disconnect request and closes the connection.
func (d *RemoteDictionary) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	// The server closes its side on disconnect, the write is best-effort.
	_, _ = d.conn.Write([]byte{skkservDisconnect})
	return d.closeConn()
}

// closeConn closes the connection. d.mu must be held.
func (d *RemoteDictionary) closeConn() error {
	err := d.conn.Close()
	d.conn = nil
	d.r = nil
	if err != nil {
		return fmt.Errorf("closing connection to %s: %w", d.Addr(), err)
	}
	return nil
}

// Candidate implements [Dictionary.Candidate]. The henkan type is not sent
// to the server; okuri-ari keys are distinguished by their trailing
// consonant. A dictionary that is not connected has no candidates.
func (d *RemoteDictionary) Candidate(ctx context.Context, _ HenkanType, key string) ([]string, error) {
	candidates, err := d.Lookup(ctx, key)
	if errors.Is(err, ErrNotConnected) {
		return nil, nil
	}
	return candidates, err
}

// Lookup sends a lookup request for key and returns the candidates. It
// returns ErrNotConnected if the connection is not open. A failed request
// closes the connection.
func (d *RemoteDictionary) Lookup(ctx context.Context, key string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, d.Addr())
	}

	req, err := charset.Encode(key, d.opts.RequestCharset)
	if err != nil {
		// Nothing was sent; the connection is still usable.
		return nil, fmt.Errorf("encoding request %q: %w", key, err)
	}

	resp, err := d.roundTrip(ctx, req)
	if err != nil {
		_ = d.closeConn()
		return nil, err
	}
	return parseResponse(resp), nil
}

// roundTrip sends a lookup request and reads the response line. d.mu must
// be held.
func (d *RemoteDictionary) roundTrip(ctx context.Context, key []byte) (string, error) {
	conn := d.conn
	// The context ending interrupts blocked reads and writes. The context
	// error is always set by the time the I/O fails.
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
		_ = conn.SetDeadline(time.Time{})
	}()

	msg := make([]byte, 0, len(key)+2)
	msg = append(msg, skkservLookup)
	msg = append(msg, key...)
	msg = append(msg, ' ')
	if _, err := conn.Write(msg); err != nil {
		return "", d.requestError(ctx, err)
	}

	line, err := d.r.ReadBytes('\n')
	if err != nil {
		return "", d.requestError(ctx, err)
	}

	resp, err := charset.Decode(line, d.opts.ResponseCharset)
	if err != nil {
		return "", fmt.Errorf("decoding response from %s: %w", d.Addr(), err)
	}
	return resp, nil
}

func (d *RemoteDictionary) requestError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return fmt.Errorf("request to %s: %w", d.Addr(), err)
}

// parseResponse parses a lookup response. A response starting with '4' is
// "not found". Otherwise the candidates are the fields between the first and
// last slash.
func parseResponse(resp string) []string {
	if resp == "" || resp[0] == skkservNotFound {
		return nil
	}

	fields := strings.Split(resp, "/")
	if len(fields) < 3 {
		return nil
	}

	var candidates []string
	for _, c := range fields[1 : len(fields)-1] {
		if c != "" {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// Candidates implements [Dictionary.Candidates]. The skkserv protocol has
// no completion request; the result is always a single entry with an empty
// key and a single empty candidate.
func (*RemoteDictionary) Candidates(context.Context, string, string) ([]Completion, error) {
	return []Completion{
		{
			Key:        "",
			Candidates: []string{""},
		},
	}, nil
}
