package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/contract"
)

// Heartbeat: a strictly increasing sequence every interval while
// connected. A miss is logged and counted, nothing more — the heartbeat
// is a liveness signal, actual disconnect detection belongs to the read
// loop's error path.

func (b *Bridge) heartbeatLoop(ctx context.Context, conn Conn) {
	ticker := time.NewTicker(b.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sendHeartbeat(conn)
		}
	}
}

func (b *Bridge) sendHeartbeat(conn Conn) {
	b.mu.Lock()
	b.hbSeq++
	seq := b.hbSeq
	b.hbSent[seq] = b.opts.Now()
	b.mu.Unlock()

	data, _ := json.Marshal(contract.HeartbeatPing{Seq: seq})
	if err := b.writeFrame(conn, contract.Frame{Type: contract.FrameHeartbeat, Data: data}); err != nil {
		log.Warn().Err(err).Str("module", "transport").Uint64("seq", seq).Msg("heartbeat send failed")
		b.dropHeartbeat(seq)
		return
	}

	time.AfterFunc(b.opts.HeartbeatTimeout, func() {
		if b.dropHeartbeat(seq) {
			log.Warn().Str("module", "transport").Uint64("seq", seq).Msg("heartbeat ack missed")
			if b.opts.Metrics != nil {
				b.opts.Metrics.HeartbeatMisses.Inc()
			}
		}
	})
}

// dropHeartbeat removes seq from the outstanding set, reporting whether
// it was still there.
func (b *Bridge) dropHeartbeat(seq uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.hbSent[seq]; !ok {
		return false
	}
	delete(b.hbSent, seq)
	return true
}

func (b *Bridge) resolveHeartbeat(frame contract.Frame) {
	var pong contract.HeartbeatPong
	if err := json.Unmarshal(frame.Data, &pong); err != nil {
		log.Warn().Err(err).Str("module", "transport").Msg("bad heartbeat ack")
		return
	}
	b.mu.Lock()
	sent, ok := b.hbSent[pong.Seq]
	delete(b.hbSent, pong.Seq)
	if !ok {
		b.mu.Unlock()
		return
	}
	latency := b.opts.Now().Sub(sent).Milliseconds()
	b.latencyMillis = latency
	b.mu.Unlock()

	if b.opts.Metrics != nil {
		b.opts.Metrics.HeartbeatLatency.Set(float64(latency))
	}
	b.router.Publish(contract.EventHeartbeat, contract.HeartbeatReport{Seq: pong.Seq, Latency: latency})
}
