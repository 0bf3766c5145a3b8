package mirror

import "io"

// copyTracked copies src into dst, reporting every chunk written to ch's
// served-bytes counter and, from there, onto ch's progress stream as a
// cumulative ProgressBytes value, so a polling consumer (front-end, TUI)
// can observe live progress via Channel.ProgressIndicator or the stream.
func copyTracked(dst io.Writer, src io.Reader, ch *HTTPChannel) (uint64, error) {
	buf := make([]byte, 32*1024)
	var total uint64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return total, writeErr
			}
			total += uint64(n)
			if ch != nil {
				ch.addServed(uint64(n))
				if served, ok := ch.ProgressIndicator(); ok {
					ch.sendProgress(served)
				}
			}
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}
