package monitor

import (
	"net/http"
	"strconv"
	"sync"
)

const requestStopwatch = "rq_time"

type httpHandler struct {
	manager  *Manager
	prefix   string
	delegate http.Handler

	stopwatch *Stopwatch

	codes    map[int]*Counter
	codesMtx sync.RWMutex
}

// NewStatHandler returns an http.Handler that times every request served by
// handler on the stopwatch "<prefix>.rq_time" and counts responses per status
// code on the counters "<prefix>.<code>".
func NewStatHandler(m *Manager, prefix string, handler http.Handler) (http.Handler, error) {
	sw, err := m.Stopwatch(JoinName(prefix, requestStopwatch))
	if err != nil {
		return nil, err
	}
	return &httpHandler{
		manager:   m,
		prefix:    prefix,
		delegate:  handler,
		stopwatch: sw,
		codes:     map[int]*Counter{},
	}, nil
}

func (h *httpHandler) counter(code int) *Counter {
	h.codesMtx.RLock()
	c := h.codes[code]
	h.codesMtx.RUnlock()

	if c != nil {
		return c
	}

	h.codesMtx.Lock()
	defer h.codesMtx.Unlock()
	if c = h.codes[code]; c == nil {
		var err error
		c, err = h.manager.Counter(JoinName(h.prefix, strconv.Itoa(code)))
		if err != nil {
			h.manager.env.log.Errorf("gomonitor: http handler: %s", err)
			return nil
		}
		h.codes[code] = c
	}
	return c
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	split := h.stopwatch.Start()
	defer split.Stop()
	h.delegate.ServeHTTP(h.wrapResponse(w), r)
}

type responseWriter struct {
	http.ResponseWriter

	headerWritten bool
	handler       *httpHandler
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}

	rw.headerWritten = true
	if c := rw.handler.counter(code); c != nil {
		c.Inc()
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap is used by http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

var (
	_ http.Handler        = (*httpHandler)(nil)
	_ http.ResponseWriter = (*responseWriter)(nil)
)
