package risk

// Authenticity labels for media verdicts.
const (
	VerdictReal               = "Real"
	VerdictDeepfake           = "Deepfake"
	VerdictAbusiveVisuals     = "Abusive Visuals"
	VerdictWeaponizedDeepfake = "Weaponized Deepfake"
	VerdictVerbalAbuse        = "Verbal Abuse/Bullying"
)

// Thresholds for the media verdict, as percentages.
const (
	deepfakeThreshold = 70
	abuseThreshold    = 60
	audioToxThreshold = 65
)

// ClassifyMedia derives the authenticity label from the three media
// signals, each a percentage in [0,100]. The rules apply strictly in
// order and later rules overwrite earlier ones: abuse beats deepfake,
// and audio toxicity beats both unless it lands on an active deepfake
// flag, which upgrades to Weaponized Deepfake.
func ClassifyMedia(deepfakePct, abusePct, audioToxPct float64) string {
	label := VerdictReal
	if deepfakePct > deepfakeThreshold {
		label = VerdictDeepfake
	}
	if abusePct > abuseThreshold {
		label = VerdictAbusiveVisuals
	}
	if audioToxPct > audioToxThreshold {
		if label == VerdictDeepfake {
			label = VerdictWeaponizedDeepfake
		} else {
			label = VerdictVerbalAbuse
		}
	}
	return label
}
