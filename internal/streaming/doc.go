/*
Package streaming sends book files to HTTP clients in bounded chunks.

The server runs with WriteTimeout disabled so that large books can be fetched
over slow links. Copy restores a per-chunk deadline through
http.ResponseController instead, and stops early when the request context is
canceled:

	res, err := streaming.Copy(r.Context(), w, file, streaming.DefaultConfig())
	metrics.BookDownloadsTotal.WithLabelValues(streaming.Outcome(err)).Inc()

Writers that do not support deadlines or flushing (such as
httptest.ResponseRecorder) are streamed without them.
*/
package streaming
