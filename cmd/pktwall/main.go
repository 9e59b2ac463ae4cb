package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/pktwall/pktwall/api"
	"github.com/pktwall/pktwall/capture"
	"github.com/pktwall/pktwall/enforce"
	"github.com/pktwall/pktwall/format"
	_ "github.com/pktwall/pktwall/format/binary"
	_ "github.com/pktwall/pktwall/format/json"
	_ "github.com/pktwall/pktwall/format/text"
	"github.com/pktwall/pktwall/pipeline"
	"github.com/pktwall/pktwall/state"
	"github.com/pktwall/pktwall/transport"
	_ "github.com/pktwall/pktwall/transport/file"
	_ "github.com/pktwall/pktwall/transport/kafka"
)

var (
	version    = ""
	buildinfos = ""
	AppVersion = "pktwall " + version + " " + buildinfos

	CaptureMode = flag.String("capture", "sim", "Capture source (sim or pcap)")
	Iface       = flag.String("iface", "eth0", "Interface to capture on")
	BpfFilter   = flag.String("capture.filter", "", "BPF filter for pcap capture")
	SimInterval = flag.Duration("capture.sim.interval", 5*time.Millisecond, "Synthetic packet interval")
	RingSize    = flag.Int("ring.size", 65536, "Ring buffer slot count")

	LogLevel = flag.String("loglevel", "info", "Log level")
	LogFmt   = flag.String("logfmt", "normal", "Log formatter")

	Format    = flag.String("format", "json", fmt.Sprintf("Choose the format (available: %s)", strings.Join(format.GetFormats(), ", ")))
	Transport = flag.String("transport", "file", fmt.Sprintf("Choose the transport (available: %s)", strings.Join(transport.GetTransports(), ", ")))

	StateURL      = flag.String("state", "memory://", fmt.Sprintf("Flow policy state engine URL (available schemes: %s)", strings.Join(state.SupportedSchemes, ", ")))
	PolicyFile    = flag.String("policies", "", "YAML file with initial default action and flow overrides")
	DefaultAction = flag.String("default.action", "pass", "Default action when no rule matches")

	RateLimitMax = flag.Int("ratelimit.max", 0, "Max packets per flow per interval before throttling (0 disables)")
	RateLimitInt = flag.Duration("ratelimit.interval", time.Second, "Rate limit interval")

	PollInterval = flag.Duration("poll", time.Millisecond, "Ring poll interval when idle")

	Addr = flag.String("addr", ":8080", "HTTP server address (API and metrics)")

	Version = flag.Bool("v", false, "Print version")
)

func main() {
	flag.Parse()

	if *Version {
		fmt.Println(AppVersion)
		os.Exit(0)
	}

	lvl, err := log.ParseLevel(*LogLevel)
	if err != nil {
		log.Fatal("error parsing log level")
	}
	log.SetLevel(lvl)
	if *LogFmt == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	formatter, err := format.FindFormat(*Format)
	if err != nil {
		log.WithError(err).Fatal("error formatter")
	}

	transporter, err := transport.FindTransport(*Transport)
	if err != nil {
		log.WithError(err).Fatal("error transporter")
	}
	defer transporter.Close()

	defaultAction, err := enforce.ParseAction(*DefaultAction)
	if err != nil {
		log.WithError(err).Fatal("error default action")
	}

	policyState, err := state.New[uint64, enforce.Action](*StateURL)
	if err != nil {
		log.WithError(err).Fatal("error state engine")
	}
	table := enforce.NewFlowTableWithState(policyState)
	defer table.Close()

	flowEnforcer := enforce.NewFlowEnforcer(table, defaultAction, nil)
	var engine enforce.Engine = flowEnforcer
	if *RateLimitMax > 0 {
		engine = enforce.NewRateLimiter(engine, *RateLimitInt, *RateLimitMax, nil)
	}

	if *PolicyFile != "" {
		f, err := os.Open(*PolicyFile)
		if err != nil {
			log.WithError(err).Fatal("error opening policy file")
		}
		config, err := enforce.LoadPolicyConfig(f)
		f.Close()
		if err != nil {
			log.WithError(err).Fatal("error parsing policy file")
		}
		if err := config.Apply(engine); err != nil {
			log.WithError(err).Fatal("error applying policy file")
		}
	}

	ring, err := capture.NewRing(*RingSize)
	if err != nil {
		log.WithError(err).Fatal("error ring buffer")
	}

	var source capture.Source
	switch *CaptureMode {
	case "sim":
		source = capture.NewSimSource(*SimInterval)
	case "pcap":
		source, err = capture.NewPcapSource(time.Second, *BpfFilter)
		if err != nil {
			log.WithError(err).Fatal("error capture source")
		}
	default:
		log.Fatalf("unknown capture mode %s", *CaptureMode)
	}

	producer := capture.NewProducer(source)

	pipe := pipeline.NewDecisionPipe(&pipeline.PipeConfig{
		Ring:         ring,
		Engine:       engine,
		Format:       formatter,
		Transport:    transporter,
		PollInterval: *PollInterval,
	})
	if err := pipe.Start(); err != nil {
		log.WithError(err).Fatal("error starting pipe")
	}

	if err := producer.Start(*Iface, ring); err != nil {
		log.WithError(err).Fatal("error starting capture")
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(engine, flowEnforcer.Table(), producer, ring)
	router := server.Router()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: *Addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()
	log.WithField("addr", *Addr).Info("control plane listening")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	log.Info("shutting down")
	producer.Stop()
	producer.Wait()
	pipe.Shutdown()
	srv.Close()
}
