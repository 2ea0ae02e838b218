package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"flight-analysis/db"
	"flight-analysis/flight"
	"flight-analysis/models"
	"flight-analysis/report"
	"flight-analysis/utils"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/mdobak/go-xerrors"
)

type socketController struct {
	analyzer *flight.Analyzer
	registry *flight.ModelRegistry
	store    db.AnalysisStore
	reporter *report.NarrativeWriter
}

func newSocketController(analyzer *flight.Analyzer, registry *flight.ModelRegistry, store db.AnalysisStore, reporter *report.NarrativeWriter) *socketController {
	return &socketController{analyzer: analyzer, registry: registry, store: store, reporter: reporter}
}

func (c *socketController) emitModelInfo(socket socketio.Conn) {
	socket.Emit("modelInfo", c.registry.Stats())
}

func (c *socketController) handleRequestModelInfo(socket socketio.Conn) {
	c.emitModelInfo(socket)
}

func (c *socketController) handleNewFlightLog(socket socketio.Conn, payload string) {
	logger := utils.GetLogger()
	ctx := context.Background()

	if payload == "" {
		logger.ErrorContext(ctx, "no data received in newFlightLog event")
		socket.Emit("analysisError", map[string]string{"message": "no flight log received"})
		return
	}

	var upload models.LogUpload
	if err := json.Unmarshal([]byte(payload), &upload); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to parse flight log payload", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "invalid flight log payload"})
		return
	}

	var flightLog flight.FlightLog
	if err := json.Unmarshal(upload.Rows, &flightLog.Rows); err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "failed to parse flight log rows", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "invalid flight log rows"})
		return
	}

	logger.InfoContext(ctx, "received flight log",
		slog.String("socketID", socket.ID()),
		slog.String("source", upload.Source),
		slog.Int("rows", len(flightLog.Rows)),
	)

	result, err := c.analyzer.Analyze(flightLog)
	if err != nil {
		err := xerrors.New(err)
		logger.ErrorContext(ctx, "analysis failed", slog.Any("error", err))
		socket.Emit("analysisError", map[string]string{"message": "analysis failed: " + err.Error()})
		return
	}

	logger.InfoContext(ctx, "analysis complete",
		slog.String("socketID", socket.ID()),
		slog.String("aircraft", string(result.AircraftType)),
		slog.Float64("confidence", result.AircraftConfidence),
		slog.Float64("riskScore", result.RiskScore),
		slog.Int("anomalies", len(result.Anomalies)),
		slog.Float64("latencyMs", result.LatencyMs),
	)

	socket.Emit("analysisResult", result)

	if c.store != nil {
		c.persist(ctx, upload.Source, result)
	}
	if c.reporter != nil {
		go c.emitNarrative(socket, result)
	}
}

func (c *socketController) persist(ctx context.Context, source string, result *flight.AnalysisResult) {
	logger := utils.GetLogger()

	raw, err := json.Marshal(result)
	if err != nil {
		logger.ErrorContext(ctx, "failed to marshal analysis result", slog.Any("error", xerrors.New(err)))
		return
	}

	record := &models.AnalysisRecord{
		Timestamp:    result.AnalyzedAt,
		Source:       source,
		AircraftType: string(result.AircraftType),
		Confidence:   result.AircraftConfidence,
		RiskScore:    result.RiskScore,
		RiskLevel:    string(result.RiskLevel),
		AnomalyCount: len(result.Anomalies),
		Rows:         result.Rows,
		LatencyMs:    result.LatencyMs,
		Result:       raw,
	}
	if _, err := c.store.SaveAnalysis(record); err != nil {
		logger.ErrorContext(ctx, "failed to persist analysis", slog.Any("error", xerrors.New(err)))
	}
}

func (c *socketController) emitNarrative(socket socketio.Conn, result *flight.AnalysisResult) {
	narrative, err := c.reporter.WriteNarrative(result)
	if err != nil {
		log.Printf("narrative generation failed: %v\n", err)
		return
	}
	socket.Emit("analysisNarrative", map[string]string{"narrative": narrative})
}

func serve(port string) {
	allowOriginFunc := func(r *http.Request) bool {
		return true
	}

	registry := flight.NewModelRegistry(flight.RegistryConfig{
		Seed:         utils.GetEnvInt64("MODEL_SEED", 42),
		Samples:      int(utils.GetEnvInt64("MODEL_SAMPLES", 1600)),
		LazyTraining: utils.GetEnvBool("MODEL_LAZY_TRAINING", true),
		Boost:        flight.DefaultBoostConfig(),
	})

	if modelPath := utils.GetEnv("MODEL_PATH", ""); modelPath != "" {
		if err := registry.LoadFromFile(modelPath); err != nil {
			log.Printf("failed to load models from %s: %v; training from scratch\n", modelPath, err)
		}
	}
	trainReport := registry.TrainAll()
	if err := trainReport.Err(); err != nil {
		log.Printf("WARNING: some aircraft models failed to train: %v\n", err)
	}

	tieBreak := flight.AircraftType(utils.GetEnv("TIE_BREAK_TYPE", string(flight.Multirotor)))
	analyzer := flight.NewAnalyzer(registry, flight.ClassifierConfig{TieBreak: tieBreak})

	store, err := db.NewAnalysisStore()
	if err != nil {
		log.Printf("WARNING: persistence disabled: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	controller := newSocketController(analyzer, registry, store, buildReporter())

	server := socketio.NewServer(&engineio.Options{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: allowOriginFunc,
			},
			&polling.Transport{
				CheckOrigin: allowOriginFunc,
			},
		},
	})

	server.OnConnect("/", func(socket socketio.Conn) error {
		socket.SetContext("")
		log.Printf("CONNECTED: %s, remote addr: %s\n", socket.ID(), socket.RemoteAddr())
		controller.emitModelInfo(socket)
		return nil
	})

	server.OnEvent("/", "requestModelInfo", func(socket socketio.Conn) {
		controller.handleRequestModelInfo(socket)
	})

	server.OnEvent("/", "newFlightLog", func(socket socketio.Conn, msg string) {
		log.Printf("newFlightLog event from %s, payload length: %d\n", socket.ID(), len(msg))
		// run in a goroutine so a long analysis never blocks the socket loop
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in handleNewFlightLog for socket %s: %v\n", socket.ID(), r)
					socket.Emit("analysisError", map[string]string{"message": "internal server error during analysis"})
				}
			}()
			controller.handleNewFlightLog(socket, msg)
		}()
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Println("socket error:", e)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("socket disconnected - ID: %s, reason: %s\n", s.ID(), reason)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("socketio listen error: %s\n", err)
		}
	}()
	defer server.Close()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)

	log.Printf("Starting HTTP server on port %v", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("HTTP server ListenAndServe: %v", err)
	}
}

func buildReporter() *report.NarrativeWriter {
	if !utils.GetEnvBool("NARRATIVE_REPORTS", false) {
		return nil
	}
	writer, err := report.NewNarrativeWriter()
	if err != nil {
		log.Printf("narrative reports disabled: %v\n", err)
		return nil
	}
	return writer
}
