package persist

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l1jgo/battlecore/internal/world"
)

// effectRecord 以剩餘時間存檔；伺服器時鐘重開後依新的 now 還原。
type effectRecord struct {
	Status    uint8 `msgpack:"s"`
	Remaining int64 `msgpack:"r"`
	Power     int32 `msgpack:"p,omitempty"`
}

// EncodeEffects packs the still-running effects into the characters.effects
// blob. Nothing running encodes as nil.
func EncodeEffects(effects []world.Effect, now int64) ([]byte, error) {
	recs := make([]effectRecord, 0, len(effects))
	for _, e := range effects {
		if e.Until <= now {
			continue
		}
		recs = append(recs, effectRecord{Status: uint8(e.Status), Remaining: e.Until - now, Power: e.Power})
	}
	if len(recs) == 0 {
		return nil, nil
	}
	b, err := msgpack.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode effects: %w", err)
	}
	return b, nil
}

// DecodeEffects restores effects saved by EncodeEffects, re-anchored at now.
func DecodeEffects(blob []byte, now int64) ([]world.Effect, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var recs []effectRecord
	if err := msgpack.Unmarshal(blob, &recs); err != nil {
		return nil, fmt.Errorf("decode effects: %w", err)
	}
	out := make([]world.Effect, 0, len(recs))
	for _, r := range recs {
		if r.Remaining <= 0 {
			continue
		}
		out = append(out, world.Effect{Status: world.Status(r.Status), Until: now + r.Remaining, Power: r.Power})
	}
	return out, nil
}
