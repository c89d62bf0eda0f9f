package promotion

import (
	"fmt"
	"sort"
)

// GroupEffects folds effects that fire the same rule on sub-positions of one cart item into a
// single effect. The result is ordered by key and does not depend on input order; grouping an
// already grouped list returns it unchanged.
func GroupEffects(effects []Effect) []Effect {
	groups := make(map[EffectKey]*Effect, len(effects))
	for _, effect := range effects {
		key := effect.Key()
		incoming := normalize(effect)
		existing, ok := groups[key]
		if !ok {
			groups[key] = &incoming
			continue
		}
		merged := mergeEffects(*existing, incoming)
		groups[key] = &merged
	}

	keys := make([]EffectKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]Effect, 0, len(keys))
	for _, key := range keys {
		out = append(out, *groups[key])
	}
	return out
}

func normalize(effect Effect) Effect {
	out := effect
	out.Props.CartItemSubPosition = nil
	out.Props.CartItemSubPositions = effect.SubPositions()
	return out
}

// mergeEffects unions sub-positions and keeps the body of the side with the lowest
// sub-position, ties broken on the rendered body.
func mergeEffects(a, b Effect) Effect {
	winner := a
	if precedes(b, a) {
		winner = b
	}
	positions := append(append([]int(nil), a.Props.CartItemSubPositions...), b.Props.CartItemSubPositions...)
	winner.Props.CartItemSubPositions = sortedSet(positions)
	return winner
}

func precedes(a, b Effect) bool {
	am, bm := minPosition(a), minPosition(b)
	if am != bm {
		return am < bm
	}
	return bodyString(a) < bodyString(b)
}

func minPosition(e Effect) int {
	if len(e.Props.CartItemSubPositions) == 0 {
		return -1
	}
	return e.Props.CartItemSubPositions[0]
}

// bodyString renders the non-positional fields; fmt prints maps with sorted keys.
func bodyString(e Effect) string {
	coupon := int64(-1)
	if e.TriggeredByCoupon != nil {
		coupon = *e.TriggeredByCoupon
	}
	return fmt.Sprintf("%s|%d|%v", e.EffectType, coupon, e.Props.Payload)
}
