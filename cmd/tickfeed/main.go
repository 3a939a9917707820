// Command tickfeed is a development stand-in for the upstream tick source.
//
// It serves a scrape page advertising a wss:// endpoint and a websocket
// stream of ticking frames with occasional simulated presses, so the
// tracker can be exercised end to end without the real site. The stream is
// TLS with a self-signed certificate; point the tracker at it with
// CLICKHISTORY_SOURCE_URL and CLICKHISTORY_INSECURE_STREAM_TLS=true.
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	mrand "math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// Default simulation constants.
const (
	defaultAddr         = ":9443"
	defaultInterval     = time.Second
	defaultParticipants = 608000
	defaultPressChance  = 0.3
	fullTimer           = 60.0
	maxPressClicks      = 5
	certValidity        = 24 * time.Hour
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type tickPayload struct {
	ParticipantsText string  `json:"participants_text"`
	SecondsLeft      float64 `json:"seconds_left"`
	NowStr           string  `json:"now_str"`
}

type tickFrame struct {
	Type    string      `json:"type"`
	Payload tickPayload `json:"payload"`
}

func main() {
	var (
		addr         = flag.String("addr", defaultAddr, "Listen address")
		interval     = flag.Duration("interval", defaultInterval, "Delay between ticks")
		participants = flag.Int("participants", defaultParticipants, "Starting participant count")
		pressChance  = flag.Float64("press-chance", defaultPressChance, "Probability of a press per tick")
	)
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		serveStream(w, r, *interval, *participants, *pressChance)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// The tracker scrapes this page for the first quoted wss:// URL.
		fmt.Fprintf(w, `<html><body><script>r.config = {"endpoint": "wss://%s/stream"}</script></body></html>`, r.Host)
	})

	cert, err := selfSignedCert()
	if err != nil {
		os.Stderr.WriteString("failed to generate certificate: " + err.Error() + "\n")
		return
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig:         &tls.Config{Certificates: []tls.Certificate{cert}},
	}

	fmt.Printf("tickfeed listening on %s (tick every %s, press chance %.0f%%)\n",
		*addr, *interval, *pressChance*100)
	if err := srv.ListenAndServeTLS("", ""); err != nil {
		os.Stderr.WriteString("server failed: " + err.Error() + "\n")
	}
}

// serveStream runs an independent simulation per connection: the timer
// counts down each tick and a simulated press bumps participants and
// resets it. A non-ticking frame is mixed in now and then so consumers
// prove they filter by type.
func serveStream(w http.ResponseWriter, r *http.Request, interval time.Duration, participants int, pressChance float64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	seconds := fullTimer
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if mrand.Float64() < pressChance {
			participants += 1 + mrand.Intn(maxPressClicks)
			seconds = fullTimer
		}

		frame := tickFrame{
			Type: "ticking",
			Payload: tickPayload{
				ParticipantsText: groupDigits(participants),
				SecondsLeft:      seconds,
				NowStr:           time.Now().UTC().Format("2006-01-02-15-04-05"),
			},
		}
		data, err := json.Marshal(frame)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}

		if mrand.Float64() < 0.05 {
			noise := []byte(`{"type":"members","payload":{"count":` + strconv.Itoa(mrand.Intn(1000)) + `}}`)
			if err := conn.WriteMessage(websocket.TextMessage, noise); err != nil {
				return
			}
		}

		seconds--
		if seconds < 0 {
			seconds = fullTimer
		}
	}
}

// groupDigits renders n with thousands separators, matching the upstream
// participants_text format.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// selfSignedCert generates a throwaway localhost certificate so the feed
// can be served over wss without provisioning real keys.
func selfSignedCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: "tickfeed.local"},
		DNSNames:     []string{"localhost", "tickfeed.local"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(certValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}, nil
}
