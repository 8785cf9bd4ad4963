package server

import (
	"log/slog"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// handleDisplayQR renders a QR code pointing at the audience display,
// so the host can put it on a projector and let phones follow along.
func handleDisplayQR(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		target := scheme + "://" + r.Host + "/display"

		png, err := qrcode.Encode(target, qrcode.Medium, 320)
		if err != nil {
			logger.Error("encoding qr code", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
