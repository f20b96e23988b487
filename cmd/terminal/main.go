package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"deriv_terminal/internal/config"
	"deriv_terminal/internal/eventlog"
	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/metrics"
	"deriv_terminal/internal/relay"
	"deriv_terminal/internal/rest"
	"deriv_terminal/internal/session"
	"deriv_terminal/internal/stream"
)

var (
	instrumentFlag = flag.String("instrument", "", "instrument name (e.g. BTCUSD-PERP)")
	intervalFlag   = flag.String("interval", "", "candle interval (1m, 5m, 15m, 30m, 1h, 2h, 4h, 12h, 1D)")
	wsURLFlag      = flag.String("ws-url", "", "market stream websocket URL")
	restURLFlag    = flag.String("rest-url", "", "historical REST base URL")
	headlessFlag   = flag.Bool("headless", false, "log market state periodically instead of drawing the UI")
)

func main() {
	flag.Parse()
	cfg := config.Load()
	if *instrumentFlag != "" {
		cfg.Instrument = strings.ToUpper(strings.TrimSpace(*instrumentFlag))
	}
	if *intervalFlag != "" {
		iv, err := interval.Parse(*intervalFlag)
		if err != nil {
			log.Fatalf("invalid -interval: %v", err)
		}
		cfg.Interval = iv
	}
	if *wsURLFlag != "" {
		cfg.StreamURL = *wsURLFlag
	}
	if *restURLFlag != "" {
		cfg.RestURL = *restURLFlag
	}

	log.Printf("Starting deriv terminal. Instrument: %s, Interval: %s, Stream: %s",
		cfg.Instrument, cfg.Interval, cfg.StreamURL)

	metrics.StartServer(cfg.MetricsListen, log.Printf)

	producer, err := relay.New(cfg.RelayKind, cfg.RelayBrokers, cfg.RelayTopic)
	if err != nil {
		log.Fatalf("relay: %v", err)
	}

	conn := stream.New(stream.Config{
		URL:            cfg.StreamURL,
		ReconnectDelay: cfg.ReconnectDelay,
	})

	opts := []session.Option{}
	if producer != nil {
		opts = append(opts, session.WithRelay(producer))
		log.Printf("relay enabled: %s, topic %s", cfg.RelayKind, cfg.RelayTopic)
	}
	if cfg.EventDir != "" {
		opts = append(opts, session.WithEventLog(eventlog.New(cfg.EventDir)))
	}

	sess := session.New(session.Config{
		Instrument:   cfg.Instrument,
		Interval:     cfg.Interval,
		SettleDelay:  cfg.SettleDelay,
		PageThrottle: cfg.PageThrottle,
	}, conn, rest.NewClient(cfg.RestURL), opts...)

	sess.Start()
	defer sess.Close()

	if *headlessFlag {
		runHeadless(sess)
		return
	}
	if err := runView(sess); err != nil {
		log.Fatalf("view: %v", err)
	}
}

func runHeadless(sess *session.Session) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			log.Println("interrupt received, shutting down...")
			return
		case <-ticker.C:
			st := sess.Snapshot()
			last := "-"
			if st.Ticker != nil {
				last = st.Ticker.Last
			}
			log.Printf("%s %s last=%s mark=%s index=%s funding=%s bars=%d stream=%s",
				st.Instrument, st.Interval, last, st.Mark, st.Index, st.Funding,
				len(st.Candles), st.Connection)
		}
	}
}
