package promotion

// DefaultEffectNames are the custom effect names that carry bundle benefits.
var DefaultEffectNames = []string{EffectNameBundle, EffectNameBundleCoupon}

// FilterBenefitEffects keeps the bundle custom effects that name a campaign or a promotion set.
// Everything else is dropped without error. An empty names list falls back to DefaultEffectNames.
func FilterBenefitEffects(effects []Effect, names []string) []Effect {
	if len(names) == 0 {
		names = DefaultEffectNames
	}
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}

	out := make([]Effect, 0, len(effects))
	for _, effect := range effects {
		if effect.EffectType != EffectTypeCustom {
			continue
		}
		if _, ok := allowed[effect.Props.Name]; !ok {
			continue
		}
		if IsPlaceholder(effect.payloadValue(PayloadCampaignCode)) &&
			IsPlaceholder(effect.payloadValue(PayloadPromotionSetCode)) {
			continue
		}
		out = append(out, effect)
	}
	return out
}
