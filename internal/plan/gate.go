package plan

// Feature is a gated capability of the platform UI.
type Feature string

const (
	FeatureAnalysis     Feature = "stock-analysis"
	FeatureDeepAnalysis Feature = "deep-analysis"
	FeatureAIChat       Feature = "ai-chat"
	FeatureRealtime     Feature = "realtime-stream"
	FeatureTerminal     Feature = "institutional-terminal"
)

// requirements maps each feature to the minimum tier that unlocks it.
// Features not listed are available to everyone.
var requirements = map[Feature]Tier{
	FeatureDeepAnalysis: TierPro,
	FeatureAIChat:       TierPro,
	FeatureRealtime:     TierEnterprise,
	FeatureTerminal:     TierInstitutional,
}

// Upsell describes a locked feature for the upgrade prompt.
type Upsell struct {
	Feature      Feature `json:"feature"`
	RequiredTier Tier    `json:"required_plan"`
	Message      string  `json:"message"`
}

// upsellMessages gives each gated feature its pitch line.
var upsellMessages = map[Feature]string{
	FeatureDeepAnalysis: "Deep multi-factor analysis is available on the Pro plan and above.",
	FeatureAIChat:       "The AI assistant is available on the Pro plan and above.",
	FeatureRealtime:     "Real-time streaming quotes require an Enterprise plan.",
	FeatureTerminal:     "The institutional terminal requires an Institutional plan.",
}

// Gate checks whether the tier unlocks the feature. When locked it
// returns the upsell payload to show instead.
func Gate(feature Feature, tier Tier) (allowed bool, upsell *Upsell) {
	required, gated := requirements[feature]
	if !gated || tier.AtLeast(required) {
		return true, nil
	}
	msg := upsellMessages[feature]
	if msg == "" {
		msg = "This feature requires a higher plan."
	}
	return false, &Upsell{Feature: feature, RequiredTier: required, Message: msg}
}

// RequiredTier returns the minimum tier for a feature (free when ungated).
func RequiredTier(feature Feature) Tier {
	if required, ok := requirements[feature]; ok {
		return required
	}
	return TierFree
}
