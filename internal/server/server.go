// Package server adapts the teacher's single-page websocket visualiser
// into a trajectory player: it streams a completed run's recorded samples
// to a browser at a throttled rate, and exposes a minimal HTTP surface for
// submitting new guest modules (spec.md §1 calls HTTP ingestion an external
// collaborator; this package owns only the interface boundary it's
// referenced through, not a full submission pipeline).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	channerics "github.com/niceyeti/channerics/channels"

	"botsim/atomicvalue"
	"botsim/internal/config"
	"botsim/internal/recorder"
	"botsim/internal/sim"
	"botsim/internal/track"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second

	// playbackRate paces how fast recorded samples are pushed to the
	// client: one sample per tick, emitted no faster than this interval,
	// regardless of how quickly the run itself actually simulated.
	playbackRate = 20 * time.Millisecond
)

// frame is one websocket message: a playback tick for one robot.
type frame struct {
	RobotName string  `json:"robotName"`
	TickIndex int     `json:"tickIndex"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	HeadingDeg float64 `json:"headingDeg"`
	LeftAngle  float64 `json:"leftAngle"`
	RightAngle float64 `json:"rightAngle"`
}

// ReplayServer serves the recorded trajectories of a completed (possibly
// multi-robot) run: one HTML page, one websocket endpoint per connection
// replaying every robot's samples in lockstep tick order.
type ReplayServer struct {
	addr    string
	results []sim.Result

	// activeConns is written by every connect/disconnect and read by the
	// status handler; both sides run on their own goroutine per
	// connection, so it's tracked without a mutex the same way the
	// teacher tracked per-tick telemetry counters.
	activeConns *atomicvalue.Uint64
}

// ServeReplay builds and runs a ReplayServer until the process exits or
// ctx is cancelled; it blocks for the lifetime of the listener.
func ServeReplay(ctx context.Context, addr string, results []sim.Result) error {
	rs := &ReplayServer{addr: addr, results: results, activeConns: atomicvalue.NewUint64(0)}
	return rs.serve(ctx)
}

func (s *ReplayServer) serve(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.serveWebsocket)
	router.HandleFunc("/status", s.serveStatus).Methods(http.MethodGet)

	httpServer := &http.Server{Addr: s.addr, Handler: router}
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *ReplayServer) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	t := template.Must(template.New("index.html").Parse(indexHTML))
	if err := t.Execute(w, nil); err != nil {
		_, _ = w.Write([]byte(err.Error()))
	}
}

func (s *ReplayServer) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("upgrade:", err)
		return
	}
	s.activeConns.Add(1)
	defer func() {
		s.activeConns.Add(^uint64(0)) // atomic decrement
		closeWebsocket(ws)
	}()
	s.publishFrames(r.Context(), ws)
}

// serveStatus reports the replay server's live connection count and the
// robot roster, read from activeConns without blocking publishFrames.
func (s *ReplayServer) serveStatus(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.results))
	for _, res := range s.results {
		names = append(names, res.RobotName)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		ActiveConnections uint64   `json:"activeConnections"`
		Robots            []string `json:"robots"`
		MaxTicks          int      `json:"maxTicks"`
	}{
		ActiveConnections: s.activeConns.Load(),
		Robots:            names,
		MaxTicks:          maxRecordLen(s.results),
	})
}

// publishFrames replays every robot's recorded samples in tick order,
// throttled to playbackRate, with the same ping/pong liveness monitoring
// the teacher's training-view server used.
func (s *ReplayServer) publishFrames(ctx context.Context, ws *websocket.Conn) {
	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()

	pinger := channerics.NewTicker(pubCtx.Done(), pingPeriod)
	ticker := channerics.NewTicker(pubCtx.Done(), playbackRate)
	lastPong := time.Now()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		case <-pubCtx.Done():
		}
		return nil
	})

	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancelPub()
				return
			}
		}
	}()

	tick := 0
	maxTicks := maxRecordLen(s.results)

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingPeriod*2 {
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-pong:
			lastPong = time.Now()
		case <-ticker:
			if tick >= maxTicks {
				return
			}
			frames := framesAtTick(s.results, tick)
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(frames); err != nil {
				return
			}
			tick++
		}
	}
}

func maxRecordLen(results []sim.Result) int {
	max := 0
	for _, r := range results {
		if r.Record != nil && r.Record.Len() > max {
			max = r.Record.Len()
		}
	}
	return max
}

func framesAtTick(results []sim.Result, tick int) []frame {
	out := make([]frame, 0, len(results))
	for _, r := range results {
		if r.Record == nil || tick >= r.Record.Len() {
			continue
		}
		s := r.Record.Samples()[tick]
		out = append(out, sampleToFrame(r.RobotName, tick, s))
	}
	return out
}

func sampleToFrame(name string, tick int, s recorder.Sample) frame {
	return frame{
		RobotName:  name,
		TickIndex:  tick,
		X:          s.Body.Origin.X,
		Y:          s.Body.Origin.Y,
		HeadingDeg: s.Body.HeadingRad * 180 / 3.14159265358979,
		LeftAngle:  s.LeftAngle,
		RightAngle: s.RightAngle,
	}
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}

const indexHTML = `<!DOCTYPE html>
<html><head><title>botsim replay</title></head>
<body>
<canvas id="track" width="800" height="600"></canvas>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (ev) => {
    const frames = JSON.parse(ev.data);
    // A real renderer draws each frame's (x, y, headingDeg) onto the canvas;
    // left minimal here since 3-D rendering is explicitly out of scope.
    console.log(frames);
  };
</script>
</body></html>`

// ServeIngestion exposes the minimal HTTP surface spec.md §6 names for
// accepting new guest modules: POST a wasm binary, get back the run's
// result summary once it completes. The upload/compile/queue pipeline
// itself is the external collaborator spec.md §1 excludes; this handler
// only demonstrates the boundary by running the module synchronously with
// sim.RunOne inside the request; nothing is queued.
func ServeIngestion(ctx context.Context, addr string, runCfg config.RunConfig) error {
	router := mux.NewRouter()
	router.HandleFunc("/modules", ingestHandler(runCfg)).Methods(http.MethodPost)

	httpServer := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: ingestion: %w", err)
	}
	return nil
}

func ingestHandler(runCfg config.RunConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 64<<20))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		trk, err := trackForIngestion(runCfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		result := sim.RunOne(body, trk, runCfg, int64(len(body)))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			RobotName string `json:"robotName"`
			Ticks     int    `json:"ticks"`
			Error     string `json:"error,omitempty"`
		}{
			RobotName: result.RobotName,
			Ticks:     safeLen(result.Record),
			Error:     errString(result.Err),
		})
	}
}

func trackForIngestion(runCfg config.RunConfig) (*track.Track, error) {
	if runCfg.TrackPath == "" {
		return nil, fmt.Errorf("server: ingestion requires a configured trackPath")
	}
	return track.LoadSpec(runCfg.TrackPath)
}

func safeLen(r *recorder.Record) int {
	if r == nil {
		return 0
	}
	return r.Len()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
