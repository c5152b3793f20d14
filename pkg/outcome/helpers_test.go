package outcome

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// noteExtension writes a single element named after itself.
type noteExtension struct {
	name string
	note *string
}

func (e *noteExtension) Name() string        { return e.name }
func (e *noteExtension) HasResultData() bool { return e.note != nil }

func (e *noteExtension) ContributeResultValues(result *Node) {
	if e.note != nil {
		result.AddText(e.name, *e.note)
	}
}

func (e *noteExtension) ExtractFields(doc *Document) {
	e.note = doc.Text("resultRecord/result/" + e.name)
}

type noteFactory string

func (f noteFactory) Name() string            { return string(f) }
func (f noteFactory) NewExtension() Extension { return &noteExtension{name: string(f)} }

func setNote(t *testing.T, req *Request, name, note string) {
	t.Helper()
	ext, ok := req.Extension(name)
	require.True(t, ok, "extension %s not registered", name)
	ext.(*noteExtension).note = &note
}

// stubTransport records posted bodies and replies with a canned
// reply or error.
type stubTransport struct {
	mu     sync.Mutex
	urls   []string
	bodies [][]byte
	reply  *RawReply
	err    error
}

func (s *stubTransport) Post(_ context.Context, url string, body []byte) (*RawReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)
	s.bodies = append(s.bodies, body)
	return s.reply, s.err
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

func successReply(op Operation) *RawReply {
	body, err := (&Response{
		Status:       StatusSuccess,
		MessageID:    "reply-1",
		MessageRefID: "msg-1",
		OperationRef: op,
		Description:  "ok",
	}).Bytes()
	if err != nil {
		panic(err)
	}
	return &RawReply{StatusCode: 200, Body: body}
}
