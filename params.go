package mastering

import "sync"

// ParamTarget identifies which processor a ParamUpdate addresses.
type ParamTarget int

const (
	TargetEQ ParamTarget = iota
	TargetCompressor
	TargetLimiter
	TargetInputTrim
	TargetOutputTrim
)

// ParamField identifies which field of the target processor a ParamUpdate
// carries. Not every field applies to every target; Chain.applyParam
// ignores fields that don't apply.
type ParamField int

const (
	FieldBassGain ParamField = iota
	FieldTrebleGain
	FieldBassFreq
	FieldTrebleFreq
	FieldThreshold
	FieldRatio
	FieldAttack
	FieldRelease
	FieldMakeupGain
	FieldCeiling
	FieldGain
	FieldBypass
)

// ParamUpdate is a small value record carried across the parameter plane:
// never a pointer into heap state, per §5's "messages are small value
// records, never owning heap pointers" rule.
type ParamUpdate struct {
	Target ParamTarget
	Field  ParamField
	Value  float64
	Bool   bool
}

// paramQueueDepth bounds the controller -> audio-callback channel. Per §5,
// if the channel is full the producer coalesces (latest-wins per field) so
// a burst of updates doesn't block the caller or does not need to block
// the consumer either.
const paramQueueDepth = 32

// ParamQueue is the single-producer (controller) / single-consumer (audio
// callback) channel carrying parameter-change messages, per §5's parameter
// plane and §9's "dynamic parameter objects -> explicit parameter records"
// note. The controller calls Submit; the chain drains it once per block,
// before processing, via Chain.ApplyPendingParams.
type ParamQueue struct {
	updates chan ParamUpdate

	mu      sync.Mutex
	pending map[paramKey]ParamUpdate
}

type paramKey struct {
	target ParamTarget
	field  ParamField
}

// NewParamQueue creates an empty queue.
func NewParamQueue() *ParamQueue {
	return &ParamQueue{
		updates: make(chan ParamUpdate, paramQueueDepth),
		pending: make(map[paramKey]ParamUpdate),
	}
}

// Submit enqueues an update. If the channel is full, Submit coalesces by
// folding the update into an in-memory latest-wins map instead of
// blocking; the coalesced value is delivered on the next successful drain.
func (q *ParamQueue) Submit(u ParamUpdate) {
	select {
	case q.updates <- u:
	default:
		q.mu.Lock()
		q.pending[paramKey{u.Target, u.Field}] = u
		q.mu.Unlock()
	}
}

// drain returns every update queued since the last drain, with coalesced
// (channel-full) updates folded in last so they take precedence, and
// clears both sources. Called once per block by the audio callback; never
// blocks.
func (q *ParamQueue) drain() []ParamUpdate {
	var out []ParamUpdate

drainLoop:
	for {
		select {
		case u := <-q.updates:
			out = append(out, u)
		default:
			break drainLoop
		}
	}

	q.mu.Lock()
	for _, u := range q.pending {
		out = append(out, u)
	}
	for k := range q.pending {
		delete(q.pending, k)
	}
	q.mu.Unlock()

	return out
}
