package monitor

import "net/http"

// wrapResponse preserves the optional interfaces of w that handlers commonly
// type assert for.
func (h *httpHandler) wrapResponse(w http.ResponseWriter) http.ResponseWriter {
	rw := &responseWriter{
		ResponseWriter: w,
		handler:        h,
	}

	flusher, canFlush := w.(http.Flusher)
	hijacker, canHijack := w.(http.Hijacker)
	pusher, canPush := w.(http.Pusher)

	switch {
	case canFlush && canHijack && canPush:
		return struct {
			*responseWriter
			http.Flusher
			http.Hijacker
			http.Pusher
		}{rw, flusher, hijacker, pusher}
	case canFlush && canHijack:
		return struct {
			*responseWriter
			http.Flusher
			http.Hijacker
		}{rw, flusher, hijacker}
	case canFlush && canPush:
		return struct {
			*responseWriter
			http.Flusher
			http.Pusher
		}{rw, flusher, pusher}
	case canHijack && canPush:
		return struct {
			*responseWriter
			http.Hijacker
			http.Pusher
		}{rw, hijacker, pusher}
	case canFlush:
		return struct {
			*responseWriter
			http.Flusher
		}{rw, flusher}
	case canHijack:
		return struct {
			*responseWriter
			http.Hijacker
		}{rw, hijacker}
	case canPush:
		return struct {
			*responseWriter
			http.Pusher
		}{rw, pusher}
	default:
		return rw
	}
}
