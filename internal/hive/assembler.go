package hive

import (
	"context"

	"hivemind/internal/backend"
	"hivemind/internal/logging"
)

// Publisher receives transcript snapshots while a reply is being
// generated. It is a pure presentation side-channel: the engine invokes it
// once per streaming delta, in delta order, and never depends on what the
// caller does with the snapshot. A nil publisher discards snapshots.
type Publisher func(snapshot string)

// inProgressMarker suffixes the provisional reply in streamed snapshots.
const inProgressMarker = " ..."

// assembleReply obtains the drone's reply and commits it as exactly one
// new log turn once the full text is known — never before. In streaming
// mode the provisional transcript is published after every delta. A
// backend failure propagates without committing a reply turn; the Host
// turn committed by the caller stays, which is the accepted asymmetry of
// the directed-message path.
func (s *Session) assembleReply(ctx context.Context, drone Drone, messages []backend.Message) (string, error) {
	if s.backend == nil {
		return "", ErrNoBackend
	}

	var reply string

	if s.streaming {
		base := RenderTranscript(s.Log.Turns())
		deltas, errs := s.backend.ChatStream(ctx, drone.Model, messages, drone.Options)
		count := 0
		for delta := range deltas {
			reply += delta
			count++
			if s.publish != nil {
				s.publish(base + "\n\n**" + drone.Name + ":**\n\n" + reply + inProgressMarker)
			}
		}
		if err := <-errs; err != nil {
			logging.BackendWarn("Streaming reply from %s failed after %d delta(s): %v", drone.Model, count, err)
			return "", err
		}
		logging.BackendDebug("Streamed reply from %s: %d delta(s), %d bytes", drone.Model, count, len(reply))
	} else {
		var err error
		reply, err = s.backend.Chat(ctx, drone.Model, messages, drone.Options)
		if err != nil {
			logging.BackendWarn("Reply from %s failed: %v", drone.Model, err)
			return "", err
		}
		logging.BackendDebug("Reply from %s: %d bytes", drone.Model, len(reply))
	}

	s.commit(drone.Name, reply)
	return reply, nil
}
