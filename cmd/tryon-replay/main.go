// tryon-replay plays a recorded landmark stream into a running try-on
// server over the detector websocket, for tuning the smoother without a
// camera.
//
// The recording is JSON lines; each line is either a full protocol
// envelope of type "landmarks" or a bare landmarks payload.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-tryon/internal/log"
	"github.com/teslashibe/go-tryon/pkg/protocol"
)

func main() {
	server := flag.String("server", "ws://localhost:8080", "Try-on server base URL")
	file := flag.String("file", "", "JSON-lines landmark recording (required)")
	fps := flag.Float64("fps", 30, "Replay rate in frames per second")
	loop := flag.Bool("loop", false, "Replay the recording forever")
	id := flag.String("id", "", "Detector ID (random if empty)")
	flag.Parse()

	log.Init("info")

	if *file == "" || *fps <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Error("open recording", "error", err)
		os.Exit(1)
	}
	frames, err := loadRecording(f)
	f.Close()
	if err != nil {
		log.Error("read recording", "file", *file, "error", err)
		os.Exit(1)
	}
	if len(frames) == 0 {
		log.Error("recording is empty", "file", *file)
		os.Exit(1)
	}

	detectorID := *id
	if detectorID == "" {
		detectorID = "replay-" + uuid.New().String()[:8]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := replay(ctx, *server+"/ws/detector/"+detectorID, frames, *fps, *loop); err != nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

// loadRecording reads landmark payloads from a JSON-lines stream.
// Blank lines and envelopes of other types are skipped.
func loadRecording(r io.Reader) ([]protocol.LandmarksData, error) {
	var frames []protocol.LandmarksData

	scanner := bufio.NewScanner(r)
	// 68 points per line fit well inside 1 MiB
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var probe struct {
			Type protocol.MessageType `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if probe.Type == "" {
			var data protocol.LandmarksData
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			frames = append(frames, data)
			continue
		}

		if probe.Type != protocol.TypeLandmarks {
			continue
		}
		msg, err := protocol.ParseMessage(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		data, err := msg.GetLandmarksData()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, *data)
	}
	return frames, scanner.Err()
}

// replay sends frames at fps until the recording ends or ctx is cancelled.
func replay(ctx context.Context, url string, frames []protocol.LandmarksData, fps float64, loop bool) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer ws.Close()

	log.Info("connected", "url", url, "frames", len(frames), "fps", fps, "loop", loop)

	// Drain server messages so pongs and state updates don't back up
	go func() {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			switch msg.Type {
			case protocol.TypeState:
				if state, err := msg.GetStateData(); err == nil {
					log.Info("session", "state", state.State, "active", state.Active, "renderers", state.Renderers)
				}
			case protocol.TypePong:
				if pong, err := msg.GetPongData(); err == nil {
					log.Info("pong", "latency_ms", pong.LatencyMs)
				}
			}
		}
	}()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()
	pingTicker := time.NewTicker(5 * time.Second)
	defer pingTicker.Stop()

	var seq uint64
	i := 0
	for {
		select {
		case <-ctx.Done():
			return closeNormally(ws)
		case <-pingTicker.C:
			msg, err := protocol.NewPingMessage(uuid.New().String())
			if err != nil {
				return err
			}
			if err := send(ws, msg); err != nil {
				return err
			}
			continue
		case <-ticker.C:
		}

		if i == len(frames) {
			if !loop {
				log.Info("replay complete", "sent", seq)
				return closeNormally(ws)
			}
			i = 0
		}

		seq++
		data := frames[i]
		data.Seq = seq
		i++

		msg, err := protocol.NewMessage(protocol.TypeLandmarks, data)
		if err != nil {
			return err
		}
		if err := send(ws, msg); err != nil {
			return err
		}
	}
}

func send(ws *websocket.Conn, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, data)
}

func closeNormally(ws *websocket.Conn) error {
	return ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
